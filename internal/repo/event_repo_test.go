package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/cvpromote/internal/domain"
)

type fakeExec struct {
	sql  []string
	args [][]any
	err  error
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestEventRepo_EmitPromoted(t *testing.T) {
	db := &fakeExec{}
	r := NewEventRepo(db)

	at := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	view := domain.ContentView{ID: 3, Name: "app-a"}
	env := domain.Environment{ID: 11, Name: "dev"}
	event := domain.NewPromotedEvent(uuid.New(), view, 101, env, "2026-10-18 automated promotion to dev", at)

	require.NoError(t, r.Emit(context.Background(), event))
	require.Len(t, db.args, 1)

	args := db.args[0]
	assert.Contains(t, db.sql[0], "INSERT INTO promotion_events")
	assert.Equal(t, event.ID, args[0])
	assert.Equal(t, "content_view.promoted", args[2])
	assert.Equal(t, 101, args[5])
	assert.Equal(t, 11, *args[6].(*int))
	assert.Equal(t, "dev", *args[7].(*string))
	assert.Equal(t, at, args[9])
}

func TestEventRepo_EmitPublishedHasNullEnvironment(t *testing.T) {
	db := &fakeExec{}
	r := NewEventRepo(db)

	event := domain.NewPublishedEvent(uuid.New(), domain.ContentView{ID: 3, Name: "app-a"}, 101, "d", time.Now())
	require.NoError(t, r.Emit(context.Background(), event))

	assert.Nil(t, db.args[0][6])
	assert.Nil(t, db.args[0][7])
}

func TestEventRepo_DuplicateEvent(t *testing.T) {
	db := &fakeExec{err: &pgconn.PgError{Code: "23505"}}
	r := NewEventRepo(db)

	err := r.Emit(context.Background(), domain.Event{ID: uuid.New()})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestEventRepo_EnsureSchema(t *testing.T) {
	db := &fakeExec{}
	require.NoError(t, NewEventRepo(db).EnsureSchema(context.Background()))
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS promotion_events")
}
