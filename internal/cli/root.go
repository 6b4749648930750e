package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shaiso/cvpromote/internal/config"
	"github.com/shaiso/cvpromote/internal/telemetry"
)

// NewRootCmd создаёт корневую команду.
//
// Корневая команда без подкоманды ведёт себя как run: так сохраняется
// привычный вызов cvpromote -s ... -c ... -l ...
func NewRootCmd(version string) *cobra.Command {
	opts := &config.Options{}

	rootCmd := &cobra.Command{
		Use:   "cvpromote",
		Short: "Publish Satellite content views and promote them through lifecycle environments",
		Long: `cvpromote publishes a new version of each content view, waits for the
publish to finish and promotes the version to lifecycle environments in order.

Content views are processed one at a time in the order given. The first
error stops the batch; content views already processed stay published.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts)
		},
	}

	BindFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(
		NewRunCmd(opts),
		NewScheduleCmd(opts),
	)

	return rootCmd
}

// NewRunCmd создаёт команду run: один batch и выход.
func NewRunCmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Publish and promote content views once",
		Example: `  cvpromote run -s satellite.example.com -u admin -p secret -c app-a -c app-b -l dev -l stage
  cvpromote run -s satellite.example.com -u admin -p secret -c app-a --all
  cvpromote run --batch nightly.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts)
		},
	}
}

func runOnce(cmd *cobra.Command, opts *config.Options) error {
	resolved, logger, err := prepare(cmd, *opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := NewApp(ctx, resolved, newOutput(cmd, resolved), logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.RunOnce(ctx)
}

// prepare дополняет флаги batch-файлом и окружением, проверяет их
// и настраивает логгер.
func prepare(cmd *cobra.Command, opts config.Options) (config.Options, *slog.Logger, error) {
	if opts.BatchFile != "" {
		batch, err := config.LoadBatch(opts.BatchFile)
		if err != nil {
			return opts, nil, err
		}
		opts.Merge(batch)
	}

	opts.ApplyEnv()

	if err := opts.Validate(); err != nil {
		return opts, nil, err
	}

	logger := telemetry.NewLogger(cmd.ErrOrStderr(), telemetry.ParseLevel(opts.LogLevel), opts.LogFormat)
	slog.SetDefault(logger)

	return opts, logger, nil
}

func newOutput(cmd *cobra.Command, opts config.Options) *Output {
	return NewOutput(opts.JSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
