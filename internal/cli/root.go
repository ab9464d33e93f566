package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/omicron/internal/condor"
	"github.com/me/omicron/internal/config"
	"github.com/me/omicron/internal/logging"
	"github.com/me/omicron/internal/pipeline"
	"github.com/me/omicron/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagDB        string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg    config.PipelineConfig
	logger *slog.Logger
)

// defaultConfigPath returns OMICRON_CONFIG, or "" for built-in defaults.
func defaultConfigPath() string {
	return os.Getenv("OMICRON_CONFIG")
}

// NewRootCmd creates the root cobra command for the omicron CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "omicron",
		Short: "omicron - plan and manage segmented analysis DAGs on HTCondor",
		Long: "omicron works out which output files an analysis job will write, submits its DAG " +
			"to HTCondor, tracks the run, and resubmits from rescue DAGs after failures.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg = config.DefaultPipelineConfig()
			if flagConfig != "" {
				if cfg, err = config.Load(flagConfig); err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") || cfg.LogLevel == "" {
				cfg.LogLevel = flagLogLevel
			}
			if flags.Changed("log-format") || cfg.LogFormat == "" {
				cfg.LogFormat = flagLogFormat
			}
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			if flagDB != "" {
				cfg.DBPath = flagDB
			}
			logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", defaultConfigPath(), "Pipeline config file (or OMICRON_CONFIG env)")
	root.PersistentFlags().StringVar(&flagDB, "db", os.Getenv("OMICRON_DB"), "Run ledger database (default ~/.omicron/runs.db, or OMICRON_DB env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newSegmentsCmd(),
		newOutstandingCmd(),
		newSubmitCmd(),
		newResubmitCmd(),
		newStatusCmd(),
		newPollCmd(),
		newJobsCmd(),
		newRunningCmd(),
		newRescueCmd(),
		newPatchCmd(),
		newChannelsCmd(),
		newRunsCmd(),
		newServeCmd(),
	)

	return root
}

// openStore opens and migrates the run ledger named by cfg.DBPath.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir := filepath.Join(home, ".omicron")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dir, "runs.db")
	}

	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	logger.Debug("ledger ready", "path", dbPath)
	return st, nil
}

func newJobQuery() *condor.JobQuery {
	return condor.NewJobQuery(condor.NewCondorSchedd(cfg.QueryExecutable, logger), logger)
}

// newPipeline wires a Pipeline to the real scheduler and the ledger. The
// returned close function releases the ledger.
func newPipeline(ctx context.Context) (*pipeline.Pipeline, func() error, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	p := pipeline.New(cfg, condor.NewSubmitter(cfg.SubmitExecutable, logger), newJobQuery(), st, logger)
	return p, st.Close, nil
}
