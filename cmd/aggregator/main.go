package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/dashboard"
	"github.com/IshaanNene/knowledge-aggregator/internal/observability"
	"github.com/IshaanNene/knowledge-aggregator/internal/pipeline"
	"github.com/IshaanNene/knowledge-aggregator/internal/repl"
)

var (
	cfgFile     string
	verbose     bool
	offline     bool
	topic       string
	topics      []string
	maxResults  int
	outputName  string
	showStatus  bool
	interactive bool
	serveAddr   string
	statusFmt   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aggregator",
		Short: "Web Knowledge Aggregator",
		Long: `Searches the web and news for a topic, extracts the articles it finds,
summarizes them with a hosted language model and writes a Markdown report
with a JSON backup.

Examples:
  aggregator --topic "AI in healthcare"
  aggregator --topics "AI,blockchain" --max-results 5
  aggregator --interactive
  aggregator serve --addr :8080`,
		SilenceUsage: true,
		RunE:         runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&offline, "offline", false, "summarize without a hosted model")

	f := rootCmd.Flags()
	f.StringVar(&topic, "topic", "", "topic to research")
	f.StringSliceVar(&topics, "topics", nil, "topics to research, repeatable or comma-separated")
	f.IntVar(&maxResults, "max-results", 0, "maximum search results per topic (0 = config default)")
	f.StringVar(&outputName, "output", "", "report filename for a single topic")
	f.BoolVar(&showStatus, "status", false, "show system status and exit")
	f.BoolVar(&interactive, "interactive", false, "start the interactive prompt")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newAggregator builds the pipeline; tests replace it.
var newAggregator = pipeline.NewFromConfig

// runRoot executes the root command.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	list := collectTopics(topic, topics)
	if !showStatus && !interactive {
		if len(list) == 0 {
			return cmd.Help()
		}
		// Fail before the pipeline opens history backends or a browser.
		if err := cfg.CheckCredentials(); err != nil {
			return err
		}
	}

	logger, closeLog, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		metrics.StartServer(ctx, cfg.Metrics.Addr)
	}

	agg, err := newAggregator(cfg, metrics, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer agg.Close()

	out := cmd.OutOrStdout()

	switch {
	case showStatus:
		return printStatus(out, checkedStatus(ctx, agg), "text")
	case interactive:
		fmt.Fprintln(out, banner())
		repl.New(agg, maxResults, cmd.InOrStdin(), out, logger).Start(ctx)
		return nil
	}

	fmt.Fprintln(out, banner())
	opts := pipeline.Options{MaxResults: maxResults}

	if len(list) == 1 {
		opts.OutputFilename = outputName
		res, err := agg.ProcessTopic(ctx, list[0], opts)
		if err != nil {
			return err
		}
		printResult(out, res)
		return nil
	}

	if outputName != "" {
		logger.Warn("--output is ignored when processing several topics")
	}
	results := agg.ProcessTopics(ctx, list, opts)
	for _, res := range results {
		printResult(out, res)
	}
	printBatchSummary(out, results)
	return nil
}

// checkedStatus is the status snapshot plus a live model check.
func checkedStatus(ctx context.Context, agg *pipeline.Aggregator) pipeline.SystemStatus {
	st := agg.Status()
	st.AI.Health = agg.CheckModel(ctx)
	return st
}

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if serveAddr != "" {
				cfg.Dashboard.Addr = serveAddr
			}

			logger, closeLog, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics := observability.NewMetrics(logger)
			if cfg.Metrics.Enabled && cfg.Metrics.Addr != cfg.Dashboard.Addr {
				metrics.StartServer(ctx, cfg.Metrics.Addr)
			}

			agg, err := newAggregator(cfg, metrics, logger)
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}
			defer agg.Close()

			fmt.Fprintln(cmd.OutOrStdout(), banner())
			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on %s\n", cfg.Dashboard.Addr)
			return dashboard.New(cfg.Dashboard.Addr, agg, metrics, logger).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	return cmd
}

// statusCmd creates the "status" subcommand.
func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show system status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			agg, err := newAggregator(cfg, nil, logger)
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}
			defer agg.Close()
			return printStatus(cmd.OutOrStdout(), checkedStatus(cmd.Context(), agg), statusFmt)
		},
	}
	cmd.Flags().StringVar(&statusFmt, "format", "text", "output format: text, yaml")
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Web Knowledge Aggregator %s\n", config.Version)
		},
	}
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if offline {
		cfg.AI.Mode = "offline"
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// setupLogger creates a structured logger on stderr, tee'd to logging.file
// when one is configured.
func setupLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = func() { f.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closeFn, nil
}

// collectTopics merges --topic and --topics, dropping blanks and repeats.
func collectTopics(single string, many []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	add(single)
	for _, t := range many {
		for _, part := range strings.Split(t, ",") {
			add(part)
		}
	}
	return out
}

var errUnknownFormat = errors.New("unknown status format")
