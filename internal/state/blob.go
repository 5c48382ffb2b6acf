package state

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
)

// blobVersion is the current save-blob schema version. Older versions are
// rejected at the persistence boundary; per-joker corruption inside a valid
// blob is recovered locally instead.
const blobVersion = 1

type blob struct {
	Version int                   `json:"version"`
	Jokers  map[string]JokerState `json:"jokers"`
}

// Serialize encodes every state bag into a versioned key/value blob. The
// byte framing around the blob (file, sqlite row, network) is the caller's
// concern.
func (st *Store) Serialize() ([]byte, error) {
	b := blob{Version: blobVersion, Jokers: make(map[string]JokerState, len(st.states))}
	for id, s := range st.states {
		b.Jokers[id] = s.clone()
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("serialize joker state: %w", err)
	}
	return data, nil
}

// Deserialize replaces the store contents from a blob produced by
// Serialize. Malformed framing (bad JSON, unknown schema version) is a hard
// error returned to the caller. A structurally valid blob whose individual
// entries fail validation loads anyway: bad entries reset to defaults and
// are reported through the returned warning, never as a failure.
func (st *Store) Deserialize(data []byte) (warn, err error) {
	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("deserialize joker state: %w", err)
	}
	if b.Version != blobVersion {
		return nil, fmt.Errorf("deserialize joker state: unsupported blob version %d", b.Version)
	}

	st.states = make(map[string]*JokerState, len(b.Jokers))
	st.resetPending = make(map[string]struct{})
	for id, s := range b.Jokers {
		if verr := s.validate(); verr != nil {
			warn = multierr.Append(warn, fmt.Errorf("joker %s reset on load: %w", id, verr))
			def := DefaultState()
			def.Version = s.Version + 1
			st.states[id] = &def
			continue
		}
		cp := s.clone()
		st.states[id] = &cp
	}
	return warn, nil
}
