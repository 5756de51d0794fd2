package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/regression"
)

func newTrainCommand(logger *logrus.Logger) *cobra.Command {
	var (
		corpusPath string
		outPath    string
		kind       string
		alpha      float64
		seed       int64
		trees      int
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a pricing model from a labeled corpus",
		Long: `Train a pricing model from a labeled corpus.

Every record needs a reference id, a positive square footage (given directly or
through room dimensions) and a label price.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelKind, err := models.ParseModelKind(kind)
			if err != nil {
				return err
			}
			records, err := loadRecords(corpusPath)
			if err != nil {
				return err
			}
			corpus, err := features.NewExtractor(nil).ExtractAll(records)
			if err != nil {
				return fmt.Errorf("failed to extract corpus features: %w", err)
			}

			hp := regression.DefaultHyperparameters()
			hp.Alpha = alpha
			hp.Seed = seed
			hp.Trees = trees
			model, err := regression.NewTrainer(logger).Train(corpus, modelKind, &hp)
			if err != nil {
				return err
			}
			if err := saveModel(outPath, model); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Trained %s model %s on %d rows (R²=%.4f, held out: %t), saved to %s\n",
				model.Kind, model.ID, model.TrainingRowCount, model.Metrics.RSquared, model.Metrics.HeldOut, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "", "Corpus file (YAML or JSON list of property records)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "model.json", "Where to write the trained model")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(models.ModelKindRidge), "Model kind: linear, ridge or random_forest")
	cmd.Flags().Float64Var(&alpha, "alpha", regression.DefaultAlpha, "Ridge regularization strength")
	cmd.Flags().Int64Var(&seed, "seed", regression.DefaultSeed, "Seed for the train/test split and forest sampling")
	cmd.Flags().IntVar(&trees, "trees", regression.DefaultTrees, "Number of trees for random_forest")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}
