package model

import "time"

// RunStatus marks the outcome of a recorded computation.
type RunStatus string

// Run statuses.
const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded engine computation: the canonical input, its
// digest, and the breakdown it produced. Runs exist so that identical
// inputs can be recomputed later and diffed bit-for-bit.
type Run struct {
	ID        string           `json:"id"`
	Filer     string           `json:"filer"`
	Period    string           `json:"period"`
	Digest    string           `json:"digest"`
	Status    RunStatus        `json:"status"`
	Input     *FilingInput     `json:"input,omitempty"`
	Breakdown *FilingBreakdown `json:"breakdown,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
