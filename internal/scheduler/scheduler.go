package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotLeader — lock удерживает другой экземпляр.
var ErrNotLeader = errors.New("not leader")

// Job — одна итерация работы (обычно — один run).
type Job func(ctx context.Context) error

// Locker — распределённая блокировка для выбора лидера.
//
// Лидер удерживает lock между тиками и отпускает его только при остановке
// Scheduler, иначе другой экземпляр, проснувшийся позже, повторит тот же тик.
//
// Реализация: repo.AdvisoryLock (pg_try_advisory_lock).
type Locker interface {
	// TryLock возвращает false, если lock захвачен другим владельцем.
	// Повторный вызов у текущего владельца возвращает true.
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Scheduler запускает Job по расписанию.
type Scheduler struct {
	schedule *Schedule
	job      Job
	locker   Locker
	logger   *slog.Logger
	now      func() time.Time

	// leader — lock захвачен этим экземпляром.
	leader bool
}

// Config — конфигурация Scheduler.
type Config struct {
	Schedule *Schedule
	Job      Job

	// Locker — опционально. Без него Tick выполняется всегда.
	Locker Locker

	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		schedule: cfg.Schedule,
		job:      cfg.Job,
		locker:   cfg.Locker,
		logger:   logger,
		now:      time.Now,
	}
}

// Start ждёт ближайшего срабатывания расписания и вызывает Tick.
// Блокируется до отмены ctx.
//
// Ошибки Tick не останавливают цикл: следующий run будет по расписанию.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"cron", s.schedule.String(),
		"timezone", s.schedule.Location().String(),
	)

	for {
		next := s.schedule.Next(s.now())
		s.logger.Info("next run scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.release(ctx)
			s.logger.Info("scheduler stopped")
			return nil
		case <-timer.C:
		}

		if err := s.Tick(ctx); err != nil {
			if errors.Is(err, ErrNotLeader) {
				s.logger.Debug("not leader, skipping run")
				continue
			}
			s.logger.Error("scheduled run failed", "error", err)
		}
	}
}

// Tick выполняет Job один раз, если этот экземпляр — лидер.
//
// Возвращает ErrNotLeader, если lock захвачен другим экземпляром.
// Захваченный lock остаётся у лидера после Tick.
func (s *Scheduler) Tick(ctx context.Context) error {
	if s.locker != nil {
		acquired, err := s.locker.TryLock(ctx)
		if err != nil {
			s.leader = false
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !acquired {
			if s.leader {
				s.logger.Warn("leadership lost")
			}
			s.leader = false
			return ErrNotLeader
		}
		if !s.leader {
			s.logger.Info("became leader")
		}
		s.leader = true
	}

	started := s.now()
	err := s.job(ctx)

	s.logger.Info("scheduler tick completed",
		"duration", s.now().Sub(started),
		"success", err == nil,
	)
	return err
}

// release отпускает lock при остановке.
func (s *Scheduler) release(ctx context.Context) {
	if s.locker == nil || !s.leader {
		return
	}
	s.leader = false

	// ctx уже отменён
	if err := s.locker.Unlock(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("failed to release lock", "error", err)
		return
	}
	s.logger.Info("leadership released")
}
