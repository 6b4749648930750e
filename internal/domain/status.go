package domain

import "strconv"

// EventState — состояние последнего события content view.
//
// Жизненный цикл:
//
//	PENDING → SUCCEEDED
//	        ↘ FAILED
type EventState int

const (
	// EventPending — событие ещё выполняется, нужно ждать.
	EventPending EventState = iota

	// EventSucceeded — событие завершилось успешно.
	EventSucceeded

	// EventFailed — событие завершилось с ошибкой или сервер вернул
	// неизвестный статус.
	EventFailed
)

// Статусы последнего события, которые сообщает сервер.
const (
	EventStatusPending = "pending"
	EventStatusSuccess = "success"
)

// String возвращает строковое представление EventState.
func (s EventState) String() string {
	switch s {
	case EventPending:
		return "PENDING"
	case EventSucceeded:
		return "SUCCEEDED"
	default:
		return "FAILED"
	}
}

// IsTerminal возвращает true, если ждать дальше не нужно.
func (s EventState) IsTerminal() bool {
	return s != EventPending
}

// EventResult — разобранный статус последнего события.
type EventResult struct {
	State EventState

	// Status — исходная строка статуса от сервера.
	Status string

	// Reason — причина ошибки для EventFailed.
	Reason string
}

// ParseEventStatus превращает строку статуса в EventResult.
//
// Допустимы только pending и success. Всё остальное (error, warning,
// пустой статус) считается ошибкой, а не поводом ждать дальше.
func ParseEventStatus(status, reason string) EventResult {
	switch status {
	case EventStatusPending:
		return EventResult{State: EventPending, Status: status}
	case EventStatusSuccess:
		return EventResult{State: EventSucceeded, Status: status}
	default:
		if reason == "" {
			reason = "unexpected status " + strconv.Quote(status)
		}
		return EventResult{State: EventFailed, Status: status, Reason: reason}
	}
}

// Состояния задачи foreman-tasks.
const (
	TaskStateStopped = "stopped"
	TaskResultOK     = "success"
)

// taskPendingStates — состояния задачи, при которых нужно ждать.
var taskPendingStates = map[string]bool{
	"planning": true,
	"planned":  true,
	"pending":  true,
	"running":  true,
}

// ParseTaskStatus превращает state/result задачи foreman-tasks в EventResult.
//
// Успех — только stopped + success. paused, stopped с другим result и
// неизвестные состояния — ошибка.
func ParseTaskStatus(state, result, reason string) EventResult {
	status := state + "/" + result
	switch {
	case taskPendingStates[state]:
		return EventResult{State: EventPending, Status: state}
	case state == TaskStateStopped && result == TaskResultOK:
		return EventResult{State: EventSucceeded, Status: result}
	default:
		if reason == "" {
			reason = "unexpected task status " + strconv.Quote(status)
		}
		return EventResult{State: EventFailed, Status: status, Reason: reason}
	}
}
