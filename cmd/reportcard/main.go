package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wudi/reportcard/config"
	"github.com/wudi/reportcard/observability"
	"github.com/wudi/reportcard/report"
)

var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reportcard",
	Short: "Render student assessment reports as PDF",
	Long: `reportcard lays out scored evaluation items as multi-column grid tables
and renders a paginated PDF report with summary, analysis and signatures.

Input files are YAML or JSON requests with student, evaluations, narrative
and action_plan keys.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reportcard %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: built-in A4 Arabic layout)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Per-run timeout")

	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output PDF path (default: input name with .pdf)")
	renderCmd.Flags().StringVar(&textPath, "text", "", "Also write a plain-text report to this path (- for stdout)")

	batchCmd.Flags().StringVarP(&outputDir, "out-dir", "o", ".", "Directory for generated PDFs")
	batchCmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Reports generated in parallel")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newGenerator loads the configuration named by --config and wires the
// global logger into a report generator.
func newGenerator() (*report.Generator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := observability.NewZapLogger(logger)
	opts := []report.Option{report.WithLogger(log)}
	if verbose {
		opts = append(opts, report.WithTracer(observability.LogTracer(log)))
	}
	return report.New(cfg, opts...)
}
