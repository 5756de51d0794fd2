package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(io.Discard)

	cmd := &cobra.Command{
		Use:   "pricectl",
		Short: "pricectl - train and query property pricing models",
		Long: `pricectl trains regression models on labeled property corpora and uses them
to predict prices, report per-feature dollar impacts and compare two properties.

Property and corpus files may be YAML or JSON. Models are stored as JSON.`,
		Version:      version,
		SilenceUsage: true,
	}

	verbose := cmd.PersistentFlags().BoolP("verbose", "v", false, "Log training details to stderr")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *verbose {
			logger.SetOutput(os.Stderr)
			logger.SetLevel(logrus.DebugLevel)
		}
	}

	cmd.AddCommand(newTrainCommand(logger))
	cmd.AddCommand(newPredictCommand())
	cmd.AddCommand(newImpactCommand())
	cmd.AddCommand(newCompareCommand(logger))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
