package store

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/timeline"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id       TEXT PRIMARY KEY,
	scenario         TEXT NOT NULL,
	active_thread_id TEXT,
	current_step     INTEGER NOT NULL DEFAULT 0,
	autopilot        INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS threads (
	thread_id        TEXT PRIMARY KEY,
	session_id       TEXT NOT NULL,
	label            TEXT NOT NULL,
	color            TEXT NOT NULL,
	parent_thread_id TEXT,
	branch_point     INTEGER,
	position         INTEGER NOT NULL,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS nodes (
	node_id          TEXT PRIMARY KEY,
	thread_id        TEXT NOT NULL,
	step             INTEGER NOT NULL,
	card_id          TEXT NOT NULL,
	chosen_option_id TEXT NOT NULL,
	metrics_json     TEXT NOT NULL,
	explanation      TEXT,
	narrative        TEXT,
	created_at       TEXT NOT NULL,
	UNIQUE(thread_id, step),
	FOREIGN KEY (thread_id) REFERENCES threads(thread_id)
);

CREATE TABLE IF NOT EXISTS decision_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	thread_id   TEXT,
	step        INTEGER NOT NULL,
	card_id     TEXT NOT NULL,
	option_id   TEXT NOT NULL,
	final_score REAL,
	rationale   TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_threads_session ON threads(session_id);
CREATE INDEX IF NOT EXISTS idx_nodes_thread ON nodes(thread_id);
CREATE INDEX IF NOT EXISTS idx_decision_log_session ON decision_log(session_id);
`

// #endregion schema

// #region store-struct

// Store persists SessionState aggregates in SQLite. UI-only state is
// never persisted; the aggregate is the unit of persistence.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for auxiliary queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region save

// SaveSession writes the whole aggregate in one transaction, replacing
// any previous rows for the session id.
func (s *Store) SaveSession(sess *timeline.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Replace: simpler than diffing and the aggregate is small.
	if _, err := tx.Exec(
		`DELETE FROM nodes WHERE thread_id IN (SELECT thread_id FROM threads WHERE session_id = ?)`,
		sess.ID,
	); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM threads WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear threads: %w", err)
	}

	autopilot := 0
	if sess.AutopilotEnabled {
		autopilot = 1
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions (session_id, scenario, active_thread_id, current_step, autopilot, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   scenario = excluded.scenario,
		   active_thread_id = excluded.active_thread_id,
		   current_step = excluded.current_step,
		   autopilot = excluded.autopilot,
		   updated_at = excluded.updated_at`,
		sess.ID, sess.Scenario, nullIfEmpty(sess.ActiveThreadID), sess.CurrentStep, autopilot,
		sess.CreatedAt.Format(time.RFC3339Nano), sess.UpdatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	for pos, t := range sess.Threads {
		var branchPoint interface{}
		if t.BranchPoint != nil {
			branchPoint = *t.BranchPoint
		}
		if _, err := tx.Exec(
			`INSERT INTO threads (thread_id, session_id, label, color, parent_thread_id, branch_point, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, sess.ID, t.Label, t.Color, nullIfEmpty(t.ParentThreadID), branchPoint, pos,
			t.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert thread %s: %w", t.ID, err)
		}

		for _, n := range t.Nodes {
			metricsJSON, err := json.Marshal(n.MetricsAfter)
			if err != nil {
				return fmt.Errorf("marshal metrics: %w", err)
			}
			if _, err := tx.Exec(
				`INSERT INTO nodes (node_id, thread_id, step, card_id, chosen_option_id, metrics_json, explanation, narrative, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				n.ID, t.ID, n.Step, n.CardID, n.ChosenOptionID, string(metricsJSON),
				nullIfEmpty(n.Explanation), nullIfEmpty(n.Narrative),
				n.Timestamp.Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert node %s: %w", n.ID, err)
			}
		}
	}

	return tx.Commit()
}

// #endregion save

// #region load

// LoadSession reads a full aggregate back, threads in saved order and
// nodes ordered by step.
func (s *Store) LoadSession(sessionID string) (timeline.Session, error) {
	var sess timeline.Session
	var activeThread sql.NullString
	var autopilot int
	var createdStr, updatedStr string

	err := s.db.QueryRow(
		`SELECT session_id, scenario, active_thread_id, current_step, autopilot, created_at, updated_at
		 FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&sess.ID, &sess.Scenario, &activeThread, &sess.CurrentStep, &autopilot, &createdStr, &updatedStr)
	if err != nil {
		return timeline.Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if activeThread.Valid {
		sess.ActiveThreadID = activeThread.String
	}
	sess.AutopilotEnabled = autopilot != 0
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)

	rows, err := s.db.Query(
		`SELECT thread_id, label, color, parent_thread_id, branch_point, created_at
		 FROM threads WHERE session_id = ? ORDER BY position`, sessionID,
	)
	if err != nil {
		return timeline.Session{}, fmt.Errorf("load threads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t timeline.Thread
		var parent sql.NullString
		var branchPoint sql.NullInt64
		var threadCreated string
		if err := rows.Scan(&t.ID, &t.Label, &t.Color, &parent, &branchPoint, &threadCreated); err != nil {
			return timeline.Session{}, fmt.Errorf("scan thread: %w", err)
		}
		if parent.Valid {
			t.ParentThreadID = parent.String
		}
		if branchPoint.Valid {
			bp := int(branchPoint.Int64)
			t.BranchPoint = &bp
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, threadCreated)

		nodes, err := s.loadNodes(t.ID)
		if err != nil {
			return timeline.Session{}, err
		}
		t.Nodes = nodes
		sess.Threads = append(sess.Threads, t)
	}
	if err := rows.Err(); err != nil {
		return timeline.Session{}, err
	}

	return sess, nil
}

func (s *Store) loadNodes(threadID string) ([]timeline.Node, error) {
	rows, err := s.db.Query(
		`SELECT node_id, step, card_id, chosen_option_id, metrics_json, explanation, narrative, created_at
		 FROM nodes WHERE thread_id = ? ORDER BY step`, threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []timeline.Node
	for rows.Next() {
		var n timeline.Node
		var metricsJSON, createdStr string
		var explanation, narrative sql.NullString
		if err := rows.Scan(&n.ID, &n.Step, &n.CardID, &n.ChosenOptionID, &metricsJSON, &explanation, &narrative, &createdStr); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		var m metrics.State
		if err := json.Unmarshal([]byte(metricsJSON), &m); err != nil {
			return nil, fmt.Errorf("unmarshal metrics for node %s: %w", n.ID, err)
		}
		n.MetricsAfter = m
		if explanation.Valid {
			n.Explanation = explanation.String
		}
		if narrative.Valid {
			n.Narrative = narrative.String
		}
		n.Timestamp, _ = time.Parse(time.RFC3339Nano, createdStr)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// #endregion load

// #region list-delete

// SessionSummary is one row of ListSessions.
type SessionSummary struct {
	ID          string
	Scenario    string
	ThreadCount int
	CurrentStep int
	UpdatedAt   time.Time
}

// ListSessions returns the most recently updated sessions.
func (s *Store) ListSessions(limit int) ([]SessionSummary, error) {
	rows, err := s.db.Query(
		`SELECT s.session_id, s.scenario, s.current_step, s.updated_at,
		        (SELECT COUNT(*) FROM threads t WHERE t.session_id = s.session_id)
		 FROM sessions s ORDER BY s.updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var updatedStr string
		if err := rows.Scan(&sum.ID, &sum.Scenario, &sum.CurrentStep, &updatedStr, &sum.ThreadCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and all dependent rows.
func (s *Store) DeleteSession(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM nodes WHERE thread_id IN (SELECT thread_id FROM threads WHERE session_id = ?)`,
		sessionID,
	); err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM threads WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete threads: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

// #endregion list-delete

// #region decision-log

// DecisionEntry is one provenance row: which card and option were
// applied at which step, and why the engine offered the card.
type DecisionEntry struct {
	SessionID  string
	ThreadID   string
	Step       int
	CardID     string
	OptionID   string
	FinalScore float64
	Rationale  string
	CreatedAt  time.Time
}

// LogDecision appends a provenance entry to decision_log.
func (s *Store) LogDecision(entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO decision_log (session_id, thread_id, step, card_id, option_id, final_score, rationale, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID, nullIfEmpty(entry.ThreadID), entry.Step, entry.CardID, entry.OptionID,
		entry.FinalScore, nullIfEmpty(entry.Rationale), entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion decision-log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
