package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений (5 полей, без секунд).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule — расписание run: cron-выражение в заданной timezone.
type Schedule struct {
	expr     string
	location *time.Location
	schedule cron.Schedule
}

// ParseSchedule разбирает cron-выражение.
//
// Пустая timezone — UTC. Невалидная timezone — ошибка, а не fallback:
// расписание batch публикации должно срабатывать там, где его ждут.
func ParseSchedule(expr, timezone string) (*Schedule, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
		}
		loc = l
	}

	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	return &Schedule{expr: expr, location: loc, schedule: schedule}, nil
}

// Next вычисляет следующее время выполнения после from.
func (s *Schedule) Next(from time.Time) time.Time {
	return s.schedule.Next(from.In(s.location)).UTC()
}

// String возвращает исходное выражение.
func (s *Schedule) String() string {
	return s.expr
}

// Location возвращает timezone расписания.
func (s *Schedule) Location() *time.Location {
	return s.location
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}
