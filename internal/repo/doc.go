// Package repo — хранилище PostgreSQL.
//
//   - db.go        — пул соединений
//   - event_repo.go — audit-таблица promotion_events
//   - lock.go      — advisory lock для режима schedule
package repo
