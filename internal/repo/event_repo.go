package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shaiso/cvpromote/internal/domain"
)

// uniqueViolation — SQLSTATE нарушения уникальности.
const uniqueViolation = "23505"

// schema — audit-таблица событий.
const schema = `
	CREATE TABLE IF NOT EXISTS promotion_events (
		id              uuid PRIMARY KEY,
		run_id          uuid NOT NULL,
		type            text NOT NULL,
		content_view    text NOT NULL,
		content_view_id integer NOT NULL,
		version_id      integer NOT NULL,
		environment_id  integer,
		environment     text,
		description     text NOT NULL,
		created_at      timestamptz NOT NULL
	);
	CREATE INDEX IF NOT EXISTS promotion_events_run_id_idx ON promotion_events (run_id);
`

// execer — часть pgxpool.Pool, которая нужна EventRepo.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EventRepo — audit-таблица событий публикации и продвижения.
//
// Реализует orchestrator.EventSink.
type EventRepo struct {
	db execer
}

// NewEventRepo создаёт новый EventRepo. db — обычно *pgxpool.Pool.
func NewEventRepo(db execer) *EventRepo {
	return &EventRepo{db: db}
}

// EnsureSchema создаёт таблицу, если её нет.
func (r *EventRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create promotion_events: %w", err)
	}
	return nil
}

// Emit записывает событие.
func (r *EventRepo) Emit(ctx context.Context, event domain.Event) error {
	query := `
		INSERT INTO promotion_events (id, run_id, type, content_view, content_view_id,
		                              version_id, environment_id, environment, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.RunID,
		string(event.Type),
		event.ContentView,
		event.ContentViewID,
		event.VersionID,
		nullInt(event.EnvironmentID),
		nullString(event.Environment),
		event.Description,
		event.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert event %s: %w", event.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
