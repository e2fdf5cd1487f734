package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/flushot/benchmark"
	"github.com/YuminosukeSato/flushot/pkg/log"
)

// options are the command-line overrides. A flag only replaces the config
// value when it was set explicitly.
type options struct {
	configPath string
	dataDir    string
	logLevel   string
	logFormat  string
	output     string
	plotDir    string
	weights    string
	seed       int64
	testSize   float64
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var cfg *benchmark.Config

	root := &cobra.Command{
		Use:   "flushot",
		Short: "Predict H1N1 and seasonal flu vaccine uptake",
		Long: `flushot reproduces the flu-shot-learning benchmark.

It loads the survey tables, explores the labels, evaluates a scaling +
median imputation + logistic regression pipeline with ROC AUC on a
stratified hold-out split, refits on every training row and writes the
submission CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = opts.load(cmd); err != nil {
				return err
			}
			return log.SetupLoggerTo(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file (defaults apply when empty)")
	pf.StringVar(&opts.dataDir, "data-dir", "", "directory holding the four competition CSVs")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&opts.logFormat, "log-format", "", "json or console")
	pf.Int64Var(&opts.seed, "seed", 0, "random seed of the evaluation split")
	pf.Float64Var(&opts.testSize, "test-size", 0, "fraction of training rows held out for evaluation")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate, refit on all training rows and write the submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, cfg, (*benchmark.Runner).Run)
		},
	}
	f := runCmd.Flags()
	f.StringVar(&opts.output, "output", "", "submission CSV path")
	f.StringVar(&opts.plotDir, "plots", "", "directory for the EDA and ROC plots")
	f.StringVar(&opts.weights, "weights", "", "write the fitted coefficients as JSON to this path")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Report the hold-out ROC AUC without writing a submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, cfg, (*benchmark.Runner).Evaluate)
		},
	}

	edaCmd := &cobra.Command{
		Use:   "eda",
		Short: "Summarise the labels and draw the exploration plots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, cfg, (*benchmark.Runner).Explore)
		},
	}
	edaCmd.Flags().StringVar(&opts.plotDir, "plots", "", "directory for the EDA plots")

	root.AddCommand(runCmd, evaluateCmd, edaCmd)
	return root
}

// load reads the config file, if any, and applies the flags that were set.
func (o *options) load(cmd *cobra.Command) (*benchmark.Config, error) {
	cfg := benchmark.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = benchmark.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Data.Dir = o.dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	if flags.Changed("seed") {
		cfg.Split.RandomSeed = o.seed
	}
	if flags.Changed("test-size") {
		cfg.Split.TestSize = o.testSize
	}
	if flags.Changed("output") {
		cfg.Output.Submission = o.output
	}
	if flags.Changed("plots") {
		cfg.Output.PlotDir = o.plotDir
	}
	if flags.Changed("weights") {
		cfg.Output.Weights = o.weights
	}
	return cfg, cfg.Validate()
}

// execute runs one runner mode and prints its report as YAML on stdout.
func execute(cmd *cobra.Command, cfg *benchmark.Config, mode func(*benchmark.Runner, context.Context) (*benchmark.Report, error)) error {
	r, err := benchmark.NewRunner(cfg)
	if err != nil {
		return err
	}
	report, err := mode(r, cmd.Context())
	if err != nil {
		return err
	}
	return report.WriteYAML(cmd.OutOrStdout())
}
