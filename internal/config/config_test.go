package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	return Options{
		Server:       "satellite.example.com",
		User:         "admin",
		Password:     "secret",
		ContentViews: []string{"app-a"},
		Environments: []string{"dev"},
		PollInterval: time.Second,
	}
}

func TestValidate_OK(t *testing.T) {
	o := validOptions()
	assert.NoError(t, o.Validate())

	o.Environments = nil
	o.AllEnvironments = true
	assert.NoError(t, o.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		field  string
	}{
		{"missing server", func(o *Options) { o.Server = "" }, "server"},
		{"missing user", func(o *Options) { o.User = "" }, "user"},
		{"missing password", func(o *Options) { o.Password = "" }, "password"},
		{"no content views", func(o *Options) { o.ContentViews = nil }, "content_views"},
		{"empty content view name", func(o *Options) { o.ContentViews = []string{"app-a", ""} }, "content_views"},
		{"no environments", func(o *Options) { o.Environments = nil }, "environments"},
		{"all and explicit", func(o *Options) { o.AllEnvironments = true }, "environments"},
		{"zero poll interval", func(o *Options) { o.PollInterval = 0 }, "poll_interval"},
		{"negative poll interval", func(o *Options) { o.PollInterval = -time.Second }, "poll_interval"},
		{"bad log format", func(o *Options) { o.LogFormat = "xml" }, "log_format"},
		{"missing ca file", func(o *Options) { o.CAFile = "/nonexistent/ca.pem" }, "ca_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(&o)

			err := o.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOptions))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SATELLITE_SERVER", "env.example.com")
	t.Setenv("SATELLITE_USER", "env-user")
	t.Setenv("SATELLITE_PASSWORD", "env-pass")
	t.Setenv("DB_URL", "postgres://localhost/cvpromote")
	t.Setenv("POLL_INTERVAL", "250ms")

	o := Options{User: "flag-user"}
	o.ApplyEnv()

	assert.Equal(t, "env.example.com", o.Server)
	assert.Equal(t, "flag-user", o.User, "flags win over environment")
	assert.Equal(t, "env-pass", o.Password)
	assert.Equal(t, "postgres://localhost/cvpromote", o.AuditDB)
	assert.Equal(t, 250*time.Millisecond, o.PollInterval)
}

func TestApplyEnv_DefaultPollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "")

	o := Options{}
	o.ApplyEnv()
	assert.Equal(t, DefaultPollInterval, o.PollInterval)

	o = Options{PollInterval: 5 * time.Second}
	o.ApplyEnv()
	assert.Equal(t, 5*time.Second, o.PollInterval)
}

func TestParseBatch(t *testing.T) {
	b, err := ParseBatch([]byte(`
server: satellite.example.com
content_views:
  - app-a
  - app-b
environments:
  - dev
  - stage
`))
	require.NoError(t, err)

	assert.Equal(t, "satellite.example.com", b.Server)
	assert.Equal(t, []string{"app-a", "app-b"}, b.ContentViews)
	assert.Equal(t, []string{"dev", "stage"}, b.Environments)
	assert.False(t, b.AllEnvironments)
}

func TestParseBatch_UnknownField(t *testing.T) {
	_, err := ParseBatch([]byte("content_view: app-a\n"))
	assert.Error(t, err)
}

func TestParseBatch_Empty(t *testing.T) {
	b, err := ParseBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, b.ContentViews)
}

func TestLoadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content_views: [app-a]\nall_environments: true\n"), 0o600))

	b, err := LoadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"app-a"}, b.ContentViews)
	assert.True(t, b.AllEnvironments)

	_, err = LoadBatch(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMerge_FlagsWin(t *testing.T) {
	b := &Batch{
		Server:          "file.example.com",
		ContentViews:    []string{"from-file"},
		AllEnvironments: true,
	}

	o := Options{ContentViews: []string{"from-flag"}, Environments: []string{"dev"}}
	o.Merge(b)

	assert.Equal(t, "file.example.com", o.Server)
	assert.Equal(t, []string{"from-flag"}, o.ContentViews)
	assert.False(t, o.AllEnvironments, "explicit environments must not be mixed with file's --all")
	assert.Equal(t, []string{"dev"}, o.Environments)
}

func TestMerge_FillsFromFile(t *testing.T) {
	b := &Batch{ContentViews: []string{"app-a"}, Environments: []string{"dev", "stage"}}

	var o Options
	o.Merge(b)
	assert.Equal(t, []string{"app-a"}, o.ContentViews)
	assert.Equal(t, []string{"dev", "stage"}, o.Environments)

	o.Merge(nil)
	assert.Equal(t, []string{"app-a"}, o.ContentViews)
}

func TestScheduleOptions_Validate(t *testing.T) {
	s := ScheduleOptions{Cron: "0 2 * * *", Timezone: "UTC"}
	assert.NoError(t, s.Validate())

	s = ScheduleOptions{}
	assert.True(t, errors.Is(s.Validate(), ErrInvalidOptions))

	s = ScheduleOptions{Cron: "every day"}
	assert.Error(t, s.Validate())

	s = ScheduleOptions{Cron: "0 2 * * *", Timezone: "Nowhere/Special"}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestScheduleOptions_ApplyEnv(t *testing.T) {
	t.Setenv("SCHEDULE_LOCK_KEY", "77")
	t.Setenv("SCHEDULE_TIMEZONE", "Europe/Berlin")

	s := ScheduleOptions{}
	s.ApplyEnv()
	assert.Equal(t, int64(77), s.LockKey)
	assert.Equal(t, "Europe/Berlin", s.Timezone)

	s = ScheduleOptions{LockKey: 5, Timezone: "UTC"}
	s.ApplyEnv()
	assert.Equal(t, int64(5), s.LockKey)
	assert.Equal(t, "UTC", s.Timezone)
}
