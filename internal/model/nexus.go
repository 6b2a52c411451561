package model

// NexusReason records why a state grants or denies nexus. Nexus
// determination itself happens upstream; the engine only reads a
// snapshot.
type NexusReason string

// Nexus reasons.
const (
	NexusPhysicalPresence  NexusReason = "PHYSICAL_PRESENCE"
	NexusEconomicThreshold NexusReason = "ECONOMIC_THRESHOLD"
	NexusAffiliate         NexusReason = "AFFILIATE"
	NexusNone              NexusReason = "NONE"
)

// NexusStatus is an immutable snapshot of per-state nexus. Read the full
// snapshot before computing; never re-read mid-calculation.
type NexusStatus struct {
	ByState       map[string]bool        `json:"by_state" yaml:"by_state"`
	ReasonByState map[string]NexusReason `json:"reason_by_state,omitempty" yaml:"reason_by_state,omitempty"`
}

// HasNexus reports whether the snapshot grants nexus in the given state.
// Unknown states default to no nexus.
func (n NexusStatus) HasNexus(state string) bool {
	return n.ByState[state]
}

// Reason returns the recorded reason for a state, or NexusNone when the
// snapshot has no entry.
func (n NexusStatus) Reason(state string) NexusReason {
	if r, ok := n.ReasonByState[state]; ok {
		return r
	}
	return NexusNone
}
