package state

import (
	"math"
	"strings"
	"testing"
)

func TestGetCreatesDefault(t *testing.T) {
	st := NewStore()
	s := st.Get("j_glee")
	if s.Version != 0 {
		t.Errorf("Expected fresh state at version 0, got %d", s.Version)
	}
	if s.Accumulator != 0 || s.TriggerCount != 0 {
		t.Errorf("Expected zeroed defaults, got %+v", s)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	st := NewStore()
	st.Update("j_ride", func(s *JokerState) {
		s.Set("rides", 3)
	})

	s := st.Get("j_ride")
	s.Set("rides", 99)
	s.Accumulator = 42

	if got := st.Get("j_ride").Value("rides"); got != 3 {
		t.Errorf("Mutating a Get copy leaked into the store: rides = %v", got)
	}
	if got := st.Get("j_ride").Accumulator; got != 0 {
		t.Errorf("Mutating a Get copy leaked into the store: accumulator = %v", got)
	}
}

func TestUpdateBumpsVersion(t *testing.T) {
	st := NewStore()
	if v := st.Version("j_stack"); v != 0 {
		t.Fatalf("Expected version 0 before any update, got %d", v)
	}

	v1 := st.Update("j_stack", func(s *JokerState) { s.Accumulator += 5 })
	v2 := st.Update("j_stack", func(s *JokerState) { s.Accumulator += 5 })

	if v1 != 1 || v2 != 2 {
		t.Errorf("Expected versions 1, 2; got %d, %d", v1, v2)
	}
	if got := st.Get("j_stack").Accumulator; got != 10 {
		t.Errorf("Expected accumulator 10, got %v", got)
	}
}

func TestRemovePurges(t *testing.T) {
	st := NewStore()
	st.Update("j_gone", func(s *JokerState) { s.Accumulator = 7 })
	st.Remove("j_gone")

	if st.Len() != 0 {
		t.Errorf("Expected empty store after Remove, got %d entries", st.Len())
	}
	// Re-created state starts over.
	if got := st.Get("j_gone").Accumulator; got != 0 {
		t.Errorf("Expected fresh state after Remove, got accumulator %v", got)
	}
}

func TestValidatePassResetsCorruptState(t *testing.T) {
	st := NewStore()
	st.Update("j_ok", func(s *JokerState) { s.Accumulator = 3 })
	st.Update("j_bad", func(s *JokerState) { s.Accumulator = math.NaN() })

	warn := st.ValidatePass()
	if warn == nil {
		t.Fatal("Expected a warning for the NaN accumulator")
	}
	if !strings.Contains(warn.Error(), "j_bad") {
		t.Errorf("Warning should name the corrupt joker, got: %v", warn)
	}

	if got := st.Get("j_ok").Accumulator; got != 3 {
		t.Errorf("Healthy state must survive a validation pass, got %v", got)
	}
	bad := st.Get("j_bad")
	if bad.Accumulator != 0 {
		t.Errorf("Corrupt state should reset to defaults, got %v", bad.Accumulator)
	}
	if bad.Version != 2 {
		t.Errorf("Reset must bump the version, got %d", bad.Version)
	}
}

func TestValidatePassHonorsResetFlag(t *testing.T) {
	st := NewStore()
	st.Update("j_flagged", func(s *JokerState) { s.Accumulator = 1 })
	st.MarkForReset("j_flagged")

	if warn := st.ValidatePass(); warn != nil {
		t.Errorf("Flagged reset is not a warning, got: %v", warn)
	}
	if got := st.Get("j_flagged").Accumulator; got != 0 {
		t.Errorf("Flagged state should reset, got accumulator %v", got)
	}
}

func TestCompact(t *testing.T) {
	st := NewStore()
	st.Update("j_live", func(s *JokerState) { s.Accumulator = 1 })
	st.Update("j_sold", func(s *JokerState) { s.Accumulator = 2 })
	st.Update("j_eaten", func(s *JokerState) { s.Accumulator = 3 })

	purged := st.Compact(map[string]bool{"j_live": true})
	if purged != 2 {
		t.Errorf("Expected 2 purged entries, got %d", purged)
	}
	if st.Len() != 1 {
		t.Errorf("Expected 1 surviving entry, got %d", st.Len())
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	st := NewStore()
	st.Update("j_count", func(s *JokerState) {
		s.Accumulator = 12.5
		s.TriggerCount = 4
		s.TriggerLimit = 10
		s.Set("diamonds_seen", 8)
	})

	data, err := st.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	loaded := NewStore()
	warn, err := loaded.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if warn != nil {
		t.Fatalf("Unexpected warnings: %v", warn)
	}

	s := loaded.Get("j_count")
	if s.Accumulator != 12.5 {
		t.Errorf("Accumulator mismatch: got %v, want 12.5", s.Accumulator)
	}
	if s.TriggerCount != 4 || s.TriggerLimit != 10 {
		t.Errorf("Trigger counter mismatch: got %d/%d", s.TriggerCount, s.TriggerLimit)
	}
	if s.Value("diamonds_seen") != 8 {
		t.Errorf("Custom map mismatch: got %v", s.Value("diamonds_seen"))
	}
	if s.Version != 1 {
		t.Errorf("Version must survive the round trip, got %d", s.Version)
	}
}

func TestDeserializeMalformed(t *testing.T) {
	st := NewStore()
	if _, err := st.Deserialize([]byte("not json")); err == nil {
		t.Error("Expected hard error for malformed blob")
	}
	if _, err := st.Deserialize([]byte(`{"version":99,"jokers":{}}`)); err == nil {
		t.Error("Expected hard error for unsupported blob version")
	}
}

func TestDeserializeResetsCorruptEntry(t *testing.T) {
	blob := `{"version":1,"jokers":{
		"j_ok":  {"accumulator":2,"version":3},
		"j_bad": {"accumulator":0,"trigger_count":-5,"version":9}
	}}`

	st := NewStore()
	warn, err := st.Deserialize([]byte(blob))
	if err != nil {
		t.Fatalf("A corrupt entry must not fail the load: %v", err)
	}
	if warn == nil || !strings.Contains(warn.Error(), "j_bad") {
		t.Errorf("Expected a warning naming j_bad, got: %v", warn)
	}

	if got := st.Get("j_ok").Accumulator; got != 2 {
		t.Errorf("Valid entry should load, got accumulator %v", got)
	}
	bad := st.Get("j_bad")
	if bad.TriggerCount != 0 {
		t.Errorf("Corrupt entry should reset, got trigger count %d", bad.TriggerCount)
	}
	if bad.Version != 10 {
		t.Errorf("Reset on load must advance the version, got %d", bad.Version)
	}
}
