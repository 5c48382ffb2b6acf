package store

import (
	"time"
)

// DB is the persistence interface for sessions and their hand history.
type DB interface {
	Close() error
	Migrate() error
	SaveSession(sess *Session) error
	UpdateSession(sess *Session) error
	GetSession(id string) (*Session, error)
	DeleteSession(id string) error
	ListSessions(query SessionsQuery) (*SessionsList, error)
	SaveHands(sessionID string, hands []HandResult) error
	GetHands(sessionID string, limit, offset int) ([]HandResult, error)
}

// SessionsQuery represents query parameters for listing sessions
type SessionsQuery struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// SessionsList represents a paginated sessions response
type SessionsList struct {
	Sessions   []Session `json:"sessions"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	TotalPages int       `json:"totalPages"`
}

// Session is a snapshot of a game in progress: the economy counters, the
// joker lineup in slot order, and the serialized joker state store.
type Session struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Money         int       `json:"money" db:"money"`
	Ante          int       `json:"ante" db:"ante"`
	Round         int       `json:"round" db:"round"`
	LineupJSON    string    `json:"lineup_json" db:"lineup_json"`
	StateBlob     []byte    `json:"state_blob" db:"state_blob"`
	TotalScore    string    `json:"total_score" db:"total_score"` // decimal string
	HandCount     int       `json:"hand_count" db:"hand_count"`
	Notes         string    `json:"notes" db:"notes"`
	EngineVersion string    `json:"engine_version" db:"engine_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// LineupEntry is one slot of a saved lineup.
type LineupEntry struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// HandResult is one scored hand within a session.
type HandResult struct {
	ID         int64   `json:"id" db:"id"`
	SessionID  string  `json:"session_id" db:"session_id"`
	HandNo     int     `json:"hand_no" db:"hand_no"`
	Chips      float64 `json:"chips" db:"chips"`
	Mult       float64 `json:"mult" db:"mult"`
	Score      float64 `json:"score" db:"score"`
	MoneyDelta int     `json:"money_delta" db:"money_delta"`
	Details    string  `json:"details" db:"details"` // JSON string
}
