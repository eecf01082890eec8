package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/config"
	"github.com/cognitio-libera/cognitio/internal/llm"
	"github.com/cognitio-libera/cognitio/internal/logging"
	"github.com/cognitio-libera/cognitio/internal/practice"
	"github.com/cognitio-libera/cognitio/internal/store"
	"github.com/cognitio-libera/cognitio/internal/tracing"
)

var rootCmd = &cobra.Command{
	Use:   "cognitio",
	Short: "LLM-backed coding practice in the terminal",
	Long: `Cognitio generates coding problems and multiple-choice questions with a
language model, grades your answers, and writes a progress report.`,
	SilenceUsage: true,
}

// Execute runs the CLI. Cancelling ctx aborts in-flight model calls.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to YAML config file (default $XDG_CONFIG_HOME/cognitio/config.yaml)")
	pf.String("db", "", "Path to SQLite diagnostics database (overrides COGNITIO_DB env var)")
	pf.String("log-level", "", "Log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "Log format: pretty or json")
	pf.Bool("trace", false, "Print OpenTelemetry spans for model calls to stderr")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagOverrides maps explicitly set persistent flags onto config keys.
func flagOverrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	flags := cmd.Flags()
	for flag, key := range map[string]string{
		"db":         "db",
		"log-level":  "log.level",
		"log-format": "log.format",
	} {
		if flags.Changed(flag) {
			v, _ := flags.GetString(flag)
			out[key] = v
		}
	}
	if flags.Changed("trace") {
		v, _ := flags.GetBool("trace")
		out["trace"] = v
	}
	return out
}

// loadConfig reads configuration with flag overrides applied. extra holds
// command-specific overrides.
func loadConfig(cmd *cobra.Command, extra map[string]any) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	overrides := flagOverrides(cmd)
	for k, v := range extra {
		overrides[k] = v
	}
	cfg, err := config.Load(config.Options{
		File:      file,
		EnvFile:   ".env",
		Overrides: overrides,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, then the COGNITIO_DB
// env var, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore opens the diagnostics database for the llm subcommands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// runtime bundles what model-backed commands need.
type runtime struct {
	cfg      *config.Config
	logger   zerolog.Logger
	provider llm.Provider
	coach    *practice.Coach
	closers  []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Warn().Err(err).Msg("shutdown")
		}
	}
}

// newRuntime loads config, sets up logging and tracing, opens the
// diagnostics store, and builds the provider and coach. A store that cannot
// be opened only disables diagnostics.
func newRuntime(ctx context.Context, cmd *cobra.Command, extra map[string]any) (*runtime, error) {
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}
	r := &runtime{cfg: cfg, logger: logger}

	if cfg.Trace {
		shutdown, err := tracing.Setup(ctx, os.Stderr, version)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, func() error { return shutdown(context.Background()) })
	}

	var events store.EventRepo
	if dbPath, err := resolveDBPath(cfg); err != nil {
		logger.Warn().Err(err).Msg("diagnostics disabled")
	} else if st, err := store.Open(dbPath); err != nil {
		logger.Warn().Err(err).Str("path", dbPath).Msg("diagnostics disabled")
	} else {
		events = st.EventRepo()
		r.closers = append(r.closers, st.Close)
	}

	lc := cfg.Provider()
	if err := lc.Validate(); err != nil {
		r.Close()
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	provider, err := llm.NewProvider(ctx, lc, events, logger)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.provider = provider
	logger.Debug().Str("provider", lc.Provider).Str("model", provider.ModelID()).Msg("provider ready")

	opts := []practice.Option{practice.WithLogger(logger)}
	if events != nil {
		opts = append(opts, practice.WithEventRepo(events))
	}
	r.coach = practice.NewCoach(provider, practice.Config{
		MaxTokens:        cfg.LLM.MaxTokens,
		Temperature:      cfg.LLM.Temperature,
		MaxAttempts:      cfg.LLM.MaxAttempts,
		StructuredOutput: cfg.LLM.StructuredOutput,
	}, opts...)
	return r, nil
}
