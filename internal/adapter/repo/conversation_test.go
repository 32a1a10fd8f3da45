package repo

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"mediagen/internal/domain"
	"mediagen/internal/infra"
)

func sampleTurns(base time.Time) []domain.ConversationTurn {
	return []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "hello", Timestamp: base},
		{Role: domain.RoleAssistant, Text: "hi, how can I help?", Timestamp: base.Add(time.Second)},
	}
}

// exerciseConversationStore runs the behaviour every conversation store shares.
func exerciseConversationStore(t *testing.T, store domain.ConversationRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.Load(ctx, "fresh"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("load unknown = %v, want ErrNotFound", err)
	}
	if err := store.Append(ctx, "conv-1", sampleTurns(base)...); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, "conv-1", sampleTurns(base.Add(time.Minute))...); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, "conv-2", sampleTurns(base)[:1]...); err != nil {
		t.Fatalf("append other: %v", err)
	}

	turns, err := store.Load(ctx, "conv-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("turns = %d, want 4", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[1].Role != domain.RoleAssistant || turns[3].Text != "hi, how can I help?" {
		t.Fatalf("unexpected order: %+v", turns)
	}
	if !turns[2].Timestamp.Equal(base.Add(time.Minute)) {
		t.Fatalf("timestamp = %v, want %v", turns[2].Timestamp, base.Add(time.Minute))
	}

	other, err := store.Load(ctx, "conv-2")
	if err != nil || len(other) != 1 {
		t.Fatalf("other conversation = %v, %v", other, err)
	}
}

func TestConversationRepositoryMemory(t *testing.T) {
	exerciseConversationStore(t, NewConversationRepositoryMemory())
}

func TestConversationRepositoryFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConversationRepositoryFile(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	exerciseConversationStore(t, store)

	if _, err := os.Stat(filepath.Join(dir, "conv-1.json")); err != nil {
		t.Fatalf("conversation file missing: %v", err)
	}
}

func TestConversationRepositoryFileRejectsTraversal(t *testing.T) {
	store, err := NewConversationRepositoryFile(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	err = store.Append(context.Background(), "../escape", sampleTurns(time.Now())...)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestConversationRepositorySQLite(t *testing.T) {
	db, err := infra.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	store := NewConversationRepositorySQL(db, DialectSQLite)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	exerciseConversationStore(t, store)
}

func TestConversationRepositoryRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseConversationStore(t, NewConversationRepositoryRedis(client))

	if n, _ := mr.List(conversationKeyPrefix + "conv-1"); len(n) != 4 {
		t.Fatalf("redis list length = %d, want 4", len(n))
	}
}

func TestConversationRepositoryPostgresSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewConversationRepositorySQL(db, DialectPostgres)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	turns := sampleTurns(base)

	insert := regexp.QuoteMeta(`INSERT INTO conversation_turns (conversation_id, role, text, created_at_ns) VALUES ($1, $2, $3, $4)`)
	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("conv-1", "user", "hello", base.UnixNano()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WithArgs("conv-1", "assistant", "hi, how can I help?", base.Add(time.Second).UnixNano()).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := store.Append(context.Background(), "conv-1", turns...); err != nil {
		t.Fatalf("append: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT role, text, created_at_ns FROM conversation_turns WHERE conversation_id = $1 ORDER BY seq ASC`)).
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "text", "created_at_ns"}).
			AddRow("user", "hello", base.UnixNano()).
			AddRow("assistant", "hi, how can I help?", base.Add(time.Second).UnixNano()))

	loaded, err := store.Load(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || !loaded[1].Timestamp.Equal(base.Add(time.Second)) {
		t.Fatalf("loaded = %+v", loaded)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConversationRepositoryPostgresSQLRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewConversationRepositorySQL(db, DialectPostgres)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversation_turns").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := store.Append(context.Background(), "conv-1", sampleTurns(time.Now())...); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("error = %v, want ErrConnDone", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
