// Package filing decodes filing input documents (YAML or JSON) into the
// engine's input model and produces the canonical form used for
// idempotency digests.
package filing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/munitax/internal/model"
)

// Load reads and decodes a filing document from disk.
func Load(path string) (*model.FilingInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "filing: read %s", path)
	}
	in, err := Decode(data)
	if err != nil {
		return nil, eris.Wrapf(err, "filing: decode %s", path)
	}
	return in, nil
}

// Decode parses a filing document. JSON documents are recognized by
// their leading brace; everything else is treated as YAML. Blank
// elections receive their defaults, then the whole election set is
// validated. Malformed elections are rejected here, before any
// calculation begins.
func Decode(data []byte) (*model.FilingInput, error) {
	var in model.FilingInput
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &in); err != nil {
			return nil, eris.Wrap(err, "filing: unmarshal json")
		}
	} else {
		if err := yaml.Unmarshal(data, &in); err != nil {
			return nil, eris.Wrap(err, "filing: unmarshal yaml")
		}
	}

	applyElectionDefaults(&in.Elections)
	if err := in.Elections.Validate(); err != nil {
		return nil, eris.Wrap(err, "filing: elections")
	}
	return &in, nil
}

// CanonicalJSON renders the input in its canonical byte form: fixed
// struct field order, sorted map keys. Identical inputs always produce
// identical bytes, which is what makes the digest usable for
// recomputation audits.
func CanonicalJSON(in *model.FilingInput) ([]byte, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, eris.Wrap(err, "filing: canonical json")
	}
	return data, nil
}

// Digest returns the hex SHA-256 of the canonical input form.
func Digest(in *model.FilingInput) (string, error) {
	data, err := CanonicalJSON(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IsDigest reports whether s has the shape of a Digest value, 64
// lowercase hex characters.
func IsDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func applyElectionDefaults(e *model.Elections) {
	defaults := model.DefaultElections()
	if e.Sourcing == "" {
		e.Sourcing = defaults.Sourcing
	}
	if e.Throwback == "" {
		e.Throwback = defaults.Throwback
	}
	if e.ServiceSourcing == "" {
		e.ServiceSourcing = defaults.ServiceSourcing
	}
	if e.Formula == "" {
		e.Formula = defaults.Formula
	}
}
