package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nopper/wikibench/internal/config"
)

// globals holds the flags shared by every subcommand.
type globals struct {
	confPath string
	verbose  bool
	workers  int
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "wikibench",
		Short: "Benchmark entity annotators against gold datasets",
		Long: `wikibench asks entity annotators to spot, annotate or disambiguate the
documents of gold datasets, caches their answers, and scores them with
micro and macro precision, recall and F1.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(g.verbose)
			if err != nil {
				return err
			}
			g.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if g.logger != nil {
				_ = g.logger.Sync() // stderr sync errors are not actionable
			}
		},
	}

	root.PersistentFlags().StringVarP(&g.confPath, "conf", "c", "configurations.yaml", "Configuration file (YAML or JSON)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log debug messages")
	root.PersistentFlags().IntVarP(&g.workers, "workers", "w", 0, "Concurrent workers (0 uses one per CPU for scoring, one annotator for runs)")

	root.AddCommand(
		newRunCmd(g),
		newReportCmd(g),
		newConvertCmd(g),
		newShowCmd(g),
		newVersionCmd(),
	)
	return root
}

// newLogger builds a console logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.confPath)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("configuration loaded",
		zap.String("path", g.confPath),
		zap.Int("annotators", len(cfg.Annotators)),
		zap.Int("datasets", len(cfg.Datasets)),
		zap.Int("experiments", len(cfg.Experiments)),
	)
	return cfg, nil
}
