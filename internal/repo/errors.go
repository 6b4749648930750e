package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrAlreadyExists — событие с таким id уже записано.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotLocked — Unlock без успешного TryLock.
	ErrNotLocked = errors.New("lock not held")
)
