package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fundamental/pricing/internal/comparison"
	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/models"
)

func newCompareCommand(logger *logrus.Logger) *cobra.Command {
	var (
		modelPath string
		aPath     string
		bPath     string
		tolerance float64
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Explain the predicted price difference between two properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			extractor := features.NewExtractor(nil)

			recordA, err := loadRecord(aPath)
			if err != nil {
				return err
			}
			a, err := extractor.Extract(recordA)
			if err != nil {
				return fmt.Errorf("property A: %w", err)
			}
			recordB, err := loadRecord(bPath)
			if err != nil {
				return err
			}
			b, err := extractor.Extract(recordB)
			if err != nil {
				return fmt.Errorf("property B: %w", err)
			}

			result, err := comparison.NewComparator(logger, tolerance).Compare(a, b, model)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Predicted price A: $%.2f\n", result.PredictedPriceA)
			fmt.Fprintf(out, "Predicted price B: $%.2f\n", result.PredictedPriceB)
			fmt.Fprintf(out, "Difference (B - A): $%.2f\n", result.TotalDelta)
			for _, category := range models.ImpactCategories {
				fmt.Fprintf(out, "  %-10s $%.2f\n", category, result.DollarImpactBreakdown[category])
			}
			fmt.Fprintln(out, result.SummaryText)
			fmt.Fprintln(out, result.Recommendation)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "Trained model file")
	cmd.Flags().StringVar(&aPath, "a", "", "Property A file (YAML or JSON)")
	cmd.Flags().StringVar(&bPath, "b", "", "Property B file (YAML or JSON)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", comparison.DefaultConsistencyTolerance, "Relative tolerance for the breakdown consistency check")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full comparison as JSON")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")

	return cmd
}
