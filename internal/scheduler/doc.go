// Package scheduler запускает run по cron-расписанию (режим schedule).
//
// Структура:
//   - scheduler.go — цикл Start и Tick под распределённым lock
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched, err := scheduler.ParseSchedule("0 3 * * 1", "Europe/Moscow")
//	...
//	s := scheduler.New(scheduler.Config{
//	    Schedule: sched,
//	    Job:      runOnce,
//	    Locker:   lock, // опционально
//	    Logger:   logger,
//	})
//	err = s.Start(ctx)
//
// Leader Election:
//
// Если несколько экземпляров запущены с одним расписанием, Locker
// (pg_try_advisory_lock) гарантирует, что batch выполнит только один.
// Лидер держит lock от первого тика до остановки; остальные экземпляры
// пропускают тики с ErrNotLeader.
package scheduler
