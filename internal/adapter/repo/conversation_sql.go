package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mediagen/internal/domain"
)

// Dialect selects placeholder and DDL syntax for ConversationRepositorySQL.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ConversationRepositorySQL stores turns as rows in a database/sql database.
type ConversationRepositorySQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewConversationRepositorySQL wraps an open database handle.
func NewConversationRepositorySQL(db *sql.DB, dialect Dialect) *ConversationRepositorySQL {
	return &ConversationRepositorySQL{db: db, dialect: dialect}
}

// EnsureSchema creates the turns table when it does not exist.
func (r *ConversationRepositorySQL) EnsureSchema(ctx context.Context) error {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if r.dialect == DialectPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversation_turns (
    ` + seq + `,
    conversation_id TEXT NOT NULL,
    role            TEXT NOT NULL,
    text            TEXT NOT NULL,
    created_at_ns   BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS conversation_turns_conv_idx ON conversation_turns (conversation_id, seq)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("conversation repo: ensure schema: %w", err)
		}
	}
	return nil
}

// Append inserts the turns in order inside one transaction.
func (r *ConversationRepositorySQL) Append(ctx context.Context, conversationID string, turns ...domain.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("conversation repo: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := r.rebind(`INSERT INTO conversation_turns (conversation_id, role, text, created_at_ns) VALUES (?, ?, ?, ?)`)
	for _, turn := range turns {
		if _, err := tx.ExecContext(ctx, query, conversationID, turn.Role, turn.Text, turn.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("conversation repo: insert turn: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("conversation repo: commit: %w", err)
	}
	return nil
}

// Load returns every turn in insertion order, or domain.ErrNotFound.
func (r *ConversationRepositorySQL) Load(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`SELECT role, text, created_at_ns FROM conversation_turns WHERE conversation_id = ? ORDER BY seq ASC`), conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation repo: load: %w", err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var (
			turn domain.ConversationTurn
			ns   int64
		)
		if err := rows.Scan(&turn.Role, &turn.Text, &ns); err != nil {
			return nil, fmt.Errorf("conversation repo: scan: %w", err)
		}
		turn.Timestamp = time.Unix(0, ns).UTC()
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, domain.ErrNotFound
	}
	return turns, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (r *ConversationRepositorySQL) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

var _ domain.ConversationRepository = (*ConversationRepositorySQL)(nil)
