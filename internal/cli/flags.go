package cli

import (
	"github.com/spf13/pflag"

	"github.com/shaiso/cvpromote/internal/config"
)

// BindFlags регистрирует общие флаги run и schedule.
//
// Повторяемые флаги (-c, -l) — StringArray, а не StringSlice: имя
// content view может содержать запятую.
func BindFlags(fs *pflag.FlagSet, o *config.Options) {
	fs.StringVarP(&o.Server, "server", "s", "", "Satellite server hostname (env SATELLITE_SERVER)")
	fs.StringVarP(&o.User, "user", "u", "", "API username (env SATELLITE_USER)")
	fs.StringVarP(&o.Password, "password", "p", "", "API password (env SATELLITE_PASSWORD)")
	fs.StringVar(&o.CAFile, "ca-file", "", "Additional PEM CA bundle to trust (env SATELLITE_CA_FILE)")

	fs.StringArrayVarP(&o.ContentViews, "cont-view", "c", nil,
		"Content view to publish, repeatable, in order of precedence (ex. -c app-a -c app-b)")
	fs.BoolVarP(&o.AllEnvironments, "all", "a", false,
		"Promote to the lifecycle environments associated with each content view")
	fs.StringArrayVarP(&o.Environments, "lifecycle-env", "l", nil,
		"Lifecycle environment to promote to, repeatable, in order of precedence (ex. -l dev -l stage)")
	fs.StringVar(&o.BatchFile, "batch", "", "YAML file with content_views and environments")

	fs.DurationVar(&o.PollInterval, "poll-interval", 0, "Pause between publish status queries (default 1s, env POLL_INTERVAL)")
	fs.DurationVar(&o.PollTimeout, "poll-timeout", 0, "Give up waiting for a publish after this long (0 waits forever)")
	fs.BoolVar(&o.AwaitPromotion, "await-promotion", false, "Wait for each promotion to finish before the next one")
	fs.BoolVar(&o.DryRun, "dry-run", false, "Resolve content views and environments, print the plan and exit")

	fs.BoolVar(&o.JSON, "json", false, "Output in JSON format")
	fs.StringVar(&o.LogLevel, "log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	fs.StringVar(&o.LogFormat, "log-format", "", "Log format: text or json (env LOG_FORMAT)")

	fs.StringVar(&o.MetricsTextfile, "metrics-textfile", "", "Write run metrics to this file for node_exporter")
	fs.StringVar(&o.Pushgateway, "pushgateway", "", "Push run metrics to this Prometheus Pushgateway URL (env PUSHGATEWAY_URL)")
	fs.StringVar(&o.AMQPURL, "amqp-url", "", "Publish events to RabbitMQ (env AMQP_URL)")
	fs.StringVar(&o.AuditDB, "audit-db", "", "Record events in PostgreSQL (env DB_URL)")
}

// bindScheduleFlags регистрирует флаги режима schedule.
func bindScheduleFlags(fs *pflag.FlagSet, s *config.ScheduleOptions) {
	fs.StringVar(&s.Cron, "cron", "", `Cron expression, 5 fields (ex. "0 2 * * *")`)
	fs.StringVar(&s.Timezone, "timezone", "", "Timezone of the cron expression (default UTC, env SCHEDULE_TIMEZONE)")
	fs.StringVar(&s.Listen, "listen", config.DefaultListen, "Address for /healthz and /metrics, empty to disable")
	fs.Int64Var(&s.LockKey, "lock-key", 0, "Advisory lock key for leader election with --audit-db (env SCHEDULE_LOCK_KEY)")
}
