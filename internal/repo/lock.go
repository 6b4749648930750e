package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultLockKey — ключ advisory lock режима schedule.
const DefaultLockKey int64 = 424242

// AdvisoryLock — leader election через pg_try_advisory_lock.
//
// Advisory lock принадлежит сессии, поэтому соединение берётся из пула
// на время удержания lock и возвращается только после unlock.
// Если соединение лидера оборвалось, lock в PostgreSQL уже снят:
// TryLock замечает это по Ping и захватывает lock заново.
type AdvisoryLock struct {
	pool *pgxpool.Pool
	key  int64

	mu   sync.Mutex
	conn *pgxpool.Conn
}

// NewAdvisoryLock создаёт lock с ключом key.
func NewAdvisoryLock(pool *pgxpool.Pool, key int64) *AdvisoryLock {
	return &AdvisoryLock{pool: pool, key: key}
}

// TryLock пытается захватить lock без ожидания.
func (l *AdvisoryLock) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		if err := l.conn.Ping(ctx); err == nil {
			return true, nil
		}
		// Сессия (а с ней и lock) считается потерянной: закрываем
		// соединение, чтобы оно не вернулось в пул с lock.
		_ = l.conn.Hijack().Close(context.WithoutCancel(ctx))
		l.conn = nil
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}

	var ok bool
	if err := conn.QueryRow(ctx, "select pg_try_advisory_lock($1)", l.key).Scan(&ok); err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock: %w", err)
	}

	if !ok {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

// Unlock отпускает lock и возвращает соединение в пул.
func (l *AdvisoryLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return ErrNotLocked
	}

	conn := l.conn
	l.conn = nil
	defer conn.Release()

	if _, err := conn.Exec(ctx, "select pg_advisory_unlock($1)", l.key); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	return nil
}
