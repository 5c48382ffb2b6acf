package state

import (
	"fmt"
	"math"
)

// JokerState is the persistent per-joker state bag: one numeric accumulator,
// an optional bounded trigger counter, a free-form map of named values, and
// a version counter bumped on every mutation. The Store owns every
// JokerState; callers only ever see copies or mutate through Store.Update.
type JokerState struct {
	Accumulator  float64            `json:"accumulator"`
	TriggerCount int                `json:"trigger_count"`
	TriggerLimit int                `json:"trigger_limit,omitempty"` // 0 = unbounded
	Custom       map[string]float64 `json:"custom,omitempty"`
	Version      uint64             `json:"version"`
}

// DefaultState returns the state a joker starts with and is reset to on
// corruption.
func DefaultState() JokerState {
	return JokerState{}
}

// clone deep-copies a state so callers cannot mutate the stored bag.
func (s JokerState) clone() JokerState {
	out := s
	if s.Custom != nil {
		out.Custom = make(map[string]float64, len(s.Custom))
		for k, v := range s.Custom {
			out.Custom[k] = v
		}
	}
	return out
}

// Set writes a named value, allocating the map on first use.
func (s *JokerState) Set(key string, v float64) {
	if s.Custom == nil {
		s.Custom = make(map[string]float64, 4)
	}
	s.Custom[key] = v
}

// Value reads a named value, returning 0 when absent.
func (s JokerState) Value(key string) float64 {
	return s.Custom[key]
}

// validate checks range and shape. A nil error means the bag is usable.
func (s JokerState) validate() error {
	if math.IsNaN(s.Accumulator) || math.IsInf(s.Accumulator, 0) {
		return fmt.Errorf("accumulator out of range: %v", s.Accumulator)
	}
	if s.TriggerCount < 0 {
		return fmt.Errorf("negative trigger count: %d", s.TriggerCount)
	}
	if s.TriggerLimit < 0 {
		return fmt.Errorf("negative trigger limit: %d", s.TriggerLimit)
	}
	if s.TriggerLimit > 0 && s.TriggerCount > s.TriggerLimit {
		return fmt.Errorf("trigger count %d exceeds limit %d", s.TriggerCount, s.TriggerLimit)
	}
	for k, v := range s.Custom {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("custom value %q out of range: %v", k, v)
		}
	}
	return nil
}
