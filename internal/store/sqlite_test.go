package store

import (
	"encoding/json"
	"testing"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestSaveAndGetSession(t *testing.T) {
	db := newTestDB(t)

	lineup, _ := json.Marshal([]LineupEntry{
		{ID: "j1", Kind: "jolly"},
		{ID: "j2", Kind: "greedy"},
	})

	sess := &Session{
		Name:          "ante 3 grind",
		Money:         24,
		Ante:          3,
		Round:         7,
		LineupJSON:    string(lineup),
		StateBlob:     []byte(`{"version":1,"states":{}}`),
		TotalScore:    "15430",
		HandCount:     12,
		Notes:         "glass cannon at 4 triggers",
		EngineVersion: "1.0.0",
	}

	if err := db.SaveSession(sess); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("SaveSession did not assign an ID")
	}

	got, err := db.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}

	if got.Name != sess.Name {
		t.Errorf("Name = %q, want %q", got.Name, sess.Name)
	}
	if got.Money != 24 || got.Ante != 3 || got.Round != 7 {
		t.Errorf("Counters = %d/%d/%d, want 24/3/7", got.Money, got.Ante, got.Round)
	}
	if got.TotalScore != "15430" {
		t.Errorf("TotalScore = %q, want 15430", got.TotalScore)
	}
	if got.HandCount != 12 {
		t.Errorf("HandCount = %d, want 12", got.HandCount)
	}
	if string(got.StateBlob) != string(sess.StateBlob) {
		t.Errorf("StateBlob = %s", got.StateBlob)
	}

	var entries []LineupEntry
	if err := json.Unmarshal([]byte(got.LineupJSON), &entries); err != nil {
		t.Fatalf("Failed to decode lineup: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != "jolly" || entries[1].Kind != "greedy" {
		t.Errorf("Lineup = %+v", entries)
	}
}

func TestUpdateSession(t *testing.T) {
	db := newTestDB(t)

	sess := &Session{Name: "fresh", EngineVersion: "1.0.0", TotalScore: "0"}
	if err := db.SaveSession(sess); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	sess.Money = 50
	sess.Round = 2
	sess.TotalScore = "820"
	sess.HandCount = 1
	if err := db.UpdateSession(sess); err != nil {
		t.Fatalf("Failed to update session: %v", err)
	}

	got, err := db.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.Money != 50 || got.Round != 2 || got.TotalScore != "820" || got.HandCount != 1 {
		t.Errorf("Updated session = %+v", got)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetSession("no-such-id"); err == nil {
		t.Fatal("Expected error for missing session")
	}
}

func TestListSessionsPagination(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		sess := &Session{Name: "run", EngineVersion: "1.0.0", TotalScore: "0"}
		if err := db.SaveSession(sess); err != nil {
			t.Fatalf("Failed to save session %d: %v", i, err)
		}
	}

	result, err := db.ListSessions(SessionsQuery{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}

	if result.TotalCount != 5 {
		t.Errorf("Expected 5 total sessions, got %d", result.TotalCount)
	}
	if len(result.Sessions) != 2 {
		t.Errorf("Expected 2 sessions per page, got %d", len(result.Sessions))
	}
	if result.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", result.TotalPages)
	}

	// Defaults kick in for a zero query
	result, err = db.ListSessions(SessionsQuery{})
	if err != nil {
		t.Fatalf("Failed to list sessions with defaults: %v", err)
	}
	if result.Page != 1 || result.PerPage != 50 {
		t.Errorf("Defaults = page %d per %d", result.Page, result.PerPage)
	}
}

func TestDeleteSessionPurgesHands(t *testing.T) {
	db := newTestDB(t)

	sess := &Session{Name: "doomed", EngineVersion: "1.0.0", TotalScore: "0"}
	if err := db.SaveSession(sess); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	hands := []HandResult{
		{HandNo: 1, Chips: 50, Mult: 11, Score: 550},
		{HandNo: 2, Chips: 80, Mult: 4, Score: 320},
	}
	if err := db.SaveHands(sess.ID, hands); err != nil {
		t.Fatalf("Failed to save hands: %v", err)
	}

	if err := db.DeleteSession(sess.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	if _, err := db.GetSession(sess.ID); err == nil {
		t.Error("Session still present after delete")
	}
	got, err := db.GetHands(sess.ID, 10, 0)
	if err != nil {
		t.Fatalf("Failed to get hands: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no hands after delete, got %d", len(got))
	}
}

func TestSaveAndGetHands(t *testing.T) {
	db := newTestDB(t)

	sess := &Session{Name: "history", EngineVersion: "1.0.0", TotalScore: "0"}
	if err := db.SaveSession(sess); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	hands := []HandResult{
		{HandNo: 3, Chips: 30, Mult: 2, Score: 60, Details: `{"messages":[]}`},
		{HandNo: 1, Chips: 50, Mult: 11, Score: 550, MoneyDelta: 2},
		{HandNo: 2, Chips: 80, Mult: 4, Score: 320},
	}
	if err := db.SaveHands(sess.ID, hands); err != nil {
		t.Fatalf("Failed to save hands: %v", err)
	}

	got, err := db.GetHands(sess.ID, 10, 0)
	if err != nil {
		t.Fatalf("Failed to get hands: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 hands, got %d", len(got))
	}
	// Ordered by hand number regardless of insert order
	for i, want := range []int{1, 2, 3} {
		if got[i].HandNo != want {
			t.Errorf("Hand %d: HandNo = %d, want %d", i, got[i].HandNo, want)
		}
	}
	if got[0].MoneyDelta != 2 {
		t.Errorf("Hand 1 MoneyDelta = %d, want 2", got[0].MoneyDelta)
	}

	// Pagination window
	page, err := db.GetHands(sess.ID, 2, 1)
	if err != nil {
		t.Fatalf("Failed to get hand page: %v", err)
	}
	if len(page) != 2 || page[0].HandNo != 2 {
		t.Errorf("Page = %+v", page)
	}
}

func TestSaveHandsEmpty(t *testing.T) {
	db := newTestDB(t)

	if err := db.SaveHands("whatever", nil); err != nil {
		t.Errorf("SaveHands(nil) = %v, want nil", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Second run must tolerate the already-applied alter migrations
	if err := db.Migrate(); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}
