package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/shaiso/cvpromote/internal/scheduler"
)

// ErrInvalidOptions — параметры запуска не прошли проверку.
var ErrInvalidOptions = errors.New("invalid options")

// Значения по умолчанию.
const (
	DefaultPollInterval = time.Second
	DefaultListen       = ":9108"
)

// Options — параметры одного run.
//
// Заполняются из флагов, затем пустые поля — из окружения и batch-файла.
type Options struct {
	// Подключение к серверу
	Server   string `json:"server"`
	User     string `json:"user"`
	Password string `json:"password"`
	CAFile   string `json:"ca_file"`

	// Что публиковать и куда продвигать
	ContentViews    []string `json:"content_views"`
	AllEnvironments bool     `json:"all_environments"`
	Environments    []string `json:"environments"`

	// BatchFile — YAML со списком content views и окружений.
	BatchFile string `json:"batch_file"`

	PollInterval   time.Duration `json:"poll_interval"`
	PollTimeout    time.Duration `json:"poll_timeout"`
	AwaitPromotion bool          `json:"await_promotion"`
	DryRun         bool          `json:"dry_run"`

	// Вывод
	JSON      bool   `json:"json"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	// Метрики и sinks
	MetricsTextfile string `json:"metrics_textfile"`
	Pushgateway     string `json:"pushgateway"`
	AMQPURL         string `json:"amqp_url"`
	AuditDB         string `json:"audit_db"`
}

// ApplyEnv заполняет незаданные поля из переменных окружения.
func (o *Options) ApplyEnv() {
	o.Server = orEnv(o.Server, "SATELLITE_SERVER")
	o.User = orEnv(o.User, "SATELLITE_USER")
	o.Password = orEnv(o.Password, "SATELLITE_PASSWORD")
	o.CAFile = orEnv(o.CAFile, "SATELLITE_CA_FILE")
	o.AMQPURL = orEnv(o.AMQPURL, "AMQP_URL")
	o.AuditDB = orEnv(o.AuditDB, "DB_URL")
	o.LogLevel = orEnv(o.LogLevel, "LOG_LEVEL")
	o.LogFormat = orEnv(o.LogFormat, "LOG_FORMAT")
	o.Pushgateway = orEnv(o.Pushgateway, "PUSHGATEWAY_URL")

	if o.PollInterval == 0 {
		o.PollInterval = getEnvDuration("POLL_INTERVAL", DefaultPollInterval)
	}
}

// Merge дополняет Options значениями из batch-файла. Флаги важнее файла.
func (o *Options) Merge(b *Batch) {
	if b == nil {
		return
	}

	if o.Server == "" {
		o.Server = b.Server
	}
	if len(o.ContentViews) == 0 {
		o.ContentViews = b.ContentViews
	}

	// Выбор окружений берётся из файла, только если во флагах его нет
	if !o.AllEnvironments && len(o.Environments) == 0 {
		o.AllEnvironments = b.AllEnvironments
		o.Environments = b.Environments
	}
}

// Validate проверяет параметры.
func (o *Options) Validate() error {
	err := validation.ValidateStruct(o,
		validation.Field(&o.Server, validation.Required),
		validation.Field(&o.User, validation.Required),
		validation.Field(&o.Password, validation.Required),
		validation.Field(&o.ContentViews,
			validation.Required.Error("at least one content view is required"),
			validation.Each(validation.Required),
		),
		validation.Field(&o.Environments,
			validation.When(!o.AllEnvironments,
				validation.Required.Error("either --all or at least one environment is required")),
			validation.When(o.AllEnvironments,
				validation.Empty.Error("cannot be combined with --all")),
			validation.Each(validation.Required),
		),
		validation.Field(&o.PollInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&o.PollTimeout, validation.Min(time.Duration(0))),
		validation.Field(&o.LogFormat, validation.In("", "text", "json")),
		validation.Field(&o.CAFile, validation.By(fileExists)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// ScheduleOptions — параметры режима schedule.
type ScheduleOptions struct {
	Cron     string `json:"cron"`
	Timezone string `json:"timezone"`

	// Listen — адрес HTTP для /healthz и /metrics. Пустой — не слушать.
	Listen string `json:"listen"`

	// LockKey — ключ advisory lock (нужен --audit-db).
	LockKey int64 `json:"lock_key"`
}

// ApplyEnv заполняет незаданные поля из переменных окружения.
func (s *ScheduleOptions) ApplyEnv() {
	s.Timezone = orEnv(s.Timezone, "SCHEDULE_TIMEZONE")
	if s.LockKey == 0 {
		s.LockKey = int64(getEnvInt("SCHEDULE_LOCK_KEY", 0))
	}
}

// Validate проверяет расписание.
func (s *ScheduleOptions) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.Cron, validation.Required, validation.By(func(value any) error {
			return scheduler.ValidateCronExpr(value.(string))
		})),
		validation.Field(&s.Timezone, validation.By(func(value any) error {
			if _, err := time.LoadLocation(value.(string)); err != nil {
				return validation.NewError("validation_timezone", "unknown timezone")
			}
			return nil
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// fileExists — правило ozzo: пустой путь допустим, непустой должен существовать.
func fileExists(value any) error {
	path, _ := value.(string)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return validation.NewError("validation_file_exists", "file does not exist")
	}
	return nil
}

// orEnv возвращает value или, если оно пустое, значение переменной key.
func orEnv(value, key string) string {
	if value != "" {
		return value
	}
	return getEnv(key, "")
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
