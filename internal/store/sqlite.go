package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	// First, create base tables
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			money INTEGER NOT NULL DEFAULT 0,
			ante INTEGER NOT NULL DEFAULT 1,
			round INTEGER NOT NULL DEFAULT 1,
			lineup_json TEXT NOT NULL DEFAULT '[]',
			state_blob BLOB,
			total_score TEXT NOT NULL DEFAULT '0',
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS hands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			hand_no INTEGER NOT NULL,
			chips REAL NOT NULL,
			mult REAL NOT NULL,
			score REAL NOT NULL,
			money_delta INTEGER NOT NULL DEFAULT 0,
			details TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hands_session_id ON hands(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hands_session_no ON hands(session_id, hand_no)`,
	}

	for _, migration := range baseMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("base migration failed: %w", err)
		}
	}

	// Then, add new columns if they don't exist
	alterMigrations := []string{
		`ALTER TABLE sessions ADD COLUMN hand_count INTEGER DEFAULT 0`,
		`ALTER TABLE sessions ADD COLUMN notes TEXT DEFAULT ''`,
	}

	for _, migration := range alterMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			// Duplicate column errors are expected on an up-to-date schema
			if !isDuplicateColumnError(err) {
				return fmt.Errorf("alter migration failed: %w", err)
			}
		}
	}

	indexMigrations := []string{
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at DESC)`,
	}

	for _, migration := range indexMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("index migration failed: %w", err)
		}
	}

	return nil
}

// isDuplicateColumnError checks if the error is a duplicate column error
func isDuplicateColumnError(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// isBusyError reports whether the error is a transient SQLITE_BUSY.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// execRetry runs an exec, retrying on SQLITE_BUSY with fibonacci backoff.
func (s *SQLiteDB) execRetry(query string, args ...interface{}) error {
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(10*time.Millisecond))
	return retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		_, err := s.db.Exec(query, args...)
		if isBusyError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// SaveSession saves a new session snapshot to the database
func (s *SQLiteDB) SaveSession(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}

	query := `INSERT INTO sessions (
		id, name, money, ante, round, lineup_json, state_blob,
		total_score, hand_count, notes, engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.execRetry(query,
		sess.ID, sess.Name, sess.Money, sess.Ante, sess.Round,
		sess.LineupJSON, sess.StateBlob, sess.TotalScore,
		sess.HandCount, sess.Notes, sess.EngineVersion,
	)
}

// UpdateSession updates an existing session snapshot
func (s *SQLiteDB) UpdateSession(sess *Session) error {
	query := `UPDATE sessions SET
		name = ?, money = ?, ante = ?, round = ?, lineup_json = ?,
		state_blob = ?, total_score = ?, hand_count = ?, notes = ?,
		engine_version = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	return s.execRetry(query,
		sess.Name, sess.Money, sess.Ante, sess.Round, sess.LineupJSON,
		sess.StateBlob, sess.TotalScore, sess.HandCount, sess.Notes,
		sess.EngineVersion, sess.ID,
	)
}

// GetSession retrieves a session by ID
func (s *SQLiteDB) GetSession(id string) (*Session, error) {
	query := `SELECT
		id, name, money, ante, round, lineup_json, state_blob,
		total_score, hand_count, notes, engine_version, created_at, updated_at
		FROM sessions WHERE id = ?`

	var sess Session
	var handCount sql.NullInt64
	var notes sql.NullString

	err := s.db.QueryRow(query, id).Scan(
		&sess.ID, &sess.Name, &sess.Money, &sess.Ante, &sess.Round,
		&sess.LineupJSON, &sess.StateBlob, &sess.TotalScore,
		&handCount, &notes, &sess.EngineVersion,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if handCount.Valid {
		sess.HandCount = int(handCount.Int64)
	}
	if notes.Valid {
		sess.Notes = notes.String
	}

	return &sess, nil
}

// DeleteSession removes a session and its hand history
func (s *SQLiteDB) DeleteSession(id string) error {
	if err := s.execRetry(`DELETE FROM hands WHERE session_id = ?`, id); err != nil {
		return err
	}
	return s.execRetry(`DELETE FROM sessions WHERE id = ?`, id)
}

// ListSessions retrieves sessions with pagination, newest first
func (s *SQLiteDB) ListSessions(query SessionsQuery) (*SessionsList, error) {
	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50 // Default page size
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT
		id, name, money, ante, round, lineup_json, state_blob,
		total_score, hand_count, notes, engine_version, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.Query(mainQuery, query.PerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var handCount sql.NullInt64
		var notes sql.NullString

		err := rows.Scan(
			&sess.ID, &sess.Name, &sess.Money, &sess.Ante, &sess.Round,
			&sess.LineupJSON, &sess.StateBlob, &sess.TotalScore,
			&handCount, &notes, &sess.EngineVersion,
			&sess.CreatedAt, &sess.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if handCount.Valid {
			sess.HandCount = int(handCount.Int64)
		}
		if notes.Valid {
			sess.Notes = notes.String
		}

		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &SessionsList{
		Sessions:   sessions,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

// SaveHands saves a batch of hand results in one transaction
func (s *SQLiteDB) SaveHands(sessionID string, hands []HandResult) error {
	if len(hands) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO hands
		(session_id, hand_no, chips, mult, score, money_delta, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, hand := range hands {
		_, err := stmt.Exec(sessionID, hand.HandNo, hand.Chips, hand.Mult,
			hand.Score, hand.MoneyDelta, hand.Details)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetHands retrieves hand results for a session, ordered by hand number
func (s *SQLiteDB) GetHands(sessionID string, limit, offset int) ([]HandResult, error) {
	query := `SELECT id, session_id, hand_no, chips, mult, score, money_delta, details
		FROM hands WHERE session_id = ?
		ORDER BY hand_no LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hands []HandResult
	for rows.Next() {
		var hand HandResult
		var details sql.NullString

		err := rows.Scan(&hand.ID, &hand.SessionID, &hand.HandNo,
			&hand.Chips, &hand.Mult, &hand.Score, &hand.MoneyDelta, &details)
		if err != nil {
			return nil, err
		}

		if details.Valid {
			hand.Details = details.String
		}

		hands = append(hands, hand)
	}

	return hands, rows.Err()
}
