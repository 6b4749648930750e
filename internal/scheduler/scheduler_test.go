package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("0 3 * * *", "Europe/Moscow")
	require.NoError(t, err)

	from := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	// 03:00 MSK = 00:00 UTC
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), s.Next(from))
	assert.Equal(t, "0 3 * * *", s.String())
}

func TestParseSchedule_DefaultUTC(t *testing.T) {
	s, err := ParseSchedule("30 * * * *", "")
	require.NoError(t, err)

	from := time.Date(2026, 10, 18, 12, 10, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC), s.Next(from))
	assert.Equal(t, time.UTC, s.Location())
}

func TestParseSchedule_Invalid(t *testing.T) {
	_, err := ParseSchedule("not a cron", "")
	assert.Error(t, err)

	_, err = ParseSchedule("* * * * *", "Mars/Olympus")
	assert.Error(t, err)

	// Секунды не поддерживаются
	assert.Error(t, ValidateCronExpr("0 0 3 * * *"))
	assert.NoError(t, ValidateCronExpr("*/5 * * * *"))
}

type fakeLocker struct {
	acquire  bool
	err      error
	locked   int
	unlocked int
}

func (l *fakeLocker) TryLock(context.Context) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.acquire {
		l.locked++
	}
	return l.acquire, nil
}

func (l *fakeLocker) Unlock(context.Context) error {
	l.unlocked++
	return nil
}

// sharedLock — один advisory lock на несколько экземпляров:
// владелец повторно получает true, остальные — false до Unlock.
type sharedLock struct {
	mu    sync.Mutex
	owner string
}

type sessionLock struct {
	shared *sharedLock
	id     string
}

func (l *sessionLock) TryLock(context.Context) (bool, error) {
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()
	if l.shared.owner == "" {
		l.shared.owner = l.id
	}
	return l.shared.owner == l.id, nil
}

func (l *sessionLock) Unlock(context.Context) error {
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()
	if l.shared.owner != l.id {
		return errors.New("not locked")
	}
	l.shared.owner = ""
	return nil
}

func TestTick_RunsJobUnderLock(t *testing.T) {
	lock := &fakeLocker{acquire: true}
	calls := 0
	s := New(Config{
		Schedule: mustSchedule(t),
		Job:      func(context.Context) error { calls++; return nil },
		Locker:   lock,
	})

	require.NoError(t, s.Tick(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, lock.locked)
	assert.Zero(t, lock.unlocked, "leader keeps the lock between ticks")
}

func TestTick_NotLeader(t *testing.T) {
	lock := &fakeLocker{acquire: false}
	s := New(Config{
		Schedule: mustSchedule(t),
		Job: func(context.Context) error {
			t.Fatal("job must not run without lock")
			return nil
		},
		Locker: lock,
	})

	err := s.Tick(context.Background())
	assert.True(t, errors.Is(err, ErrNotLeader))
	assert.Zero(t, lock.unlocked)
}

func TestTick_JobErrorKeepsLeadership(t *testing.T) {
	lock := &fakeLocker{acquire: true}
	boom := errors.New("boom")
	calls := 0
	s := New(Config{
		Schedule: mustSchedule(t),
		Job:      func(context.Context) error { calls++; return boom },
		Locker:   lock,
	})

	assert.ErrorIs(t, s.Tick(context.Background()), boom)
	assert.ErrorIs(t, s.Tick(context.Background()), boom)
	assert.Equal(t, 2, calls)
	assert.Zero(t, lock.unlocked)
}

func TestTick_TwoInstancesRunEachTickOnce(t *testing.T) {
	shared := &sharedLock{}
	runs := 0
	job := func(context.Context) error { runs++; return nil }

	a := New(Config{Schedule: mustSchedule(t), Job: job, Locker: &sessionLock{shared: shared, id: "a"}})
	b := New(Config{Schedule: mustSchedule(t), Job: job, Locker: &sessionLock{shared: shared, id: "b"}})

	// Тик одного слота: b просыпается уже после завершения job у a
	require.NoError(t, a.Tick(context.Background()))
	assert.ErrorIs(t, b.Tick(context.Background()), ErrNotLeader)
	assert.Equal(t, 1, runs)

	// Следующий слот снова выполняет лидер
	require.NoError(t, a.Tick(context.Background()))
	assert.ErrorIs(t, b.Tick(context.Background()), ErrNotLeader)
	assert.Equal(t, 2, runs)
}

func TestStart_ReleasesLeadershipOnStop(t *testing.T) {
	shared := &sharedLock{}
	job := func(context.Context) error { return nil }

	a := New(Config{Schedule: mustSchedule(t), Job: job, Locker: &sessionLock{shared: shared, id: "a"}})
	b := New(Config{Schedule: mustSchedule(t), Job: job, Locker: &sessionLock{shared: shared, id: "b"}})

	require.NoError(t, a.Tick(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Start(ctx))

	assert.Empty(t, shared.owner)
	assert.NoError(t, b.Tick(context.Background()))
}

func TestTick_LockError(t *testing.T) {
	s := New(Config{
		Schedule: mustSchedule(t),
		Job:      func(context.Context) error { return nil },
		Locker:   &fakeLocker{err: errors.New("db down")},
	})

	err := s.Tick(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire lock")
}

func TestStart_StopsOnCancel(t *testing.T) {
	s := New(Config{
		Schedule: mustSchedule(t),
		Job:      func(context.Context) error { return nil },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func mustSchedule(t *testing.T) *Schedule {
	t.Helper()
	s, err := ParseSchedule("0 0 1 1 *", "")
	require.NoError(t, err)
	return s
}
