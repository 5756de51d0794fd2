package main

import (
	"github.com/spf13/cobra"

	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/regression"
)

func newImpactCommand() *cobra.Command {
	var modelPath, feature, baselinePath string

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Report the dollar impact per unit of model features",
		Long: `Report the dollar impact per unit of model features.

Without --feature every feature is reported. With --baseline the impact is
probed around that property by finite difference, which also works for
random forest models.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := loadModel(modelPath)
			if err != nil {
				return err
			}

			names := model.FeatureOrder
			if feature != "" {
				names = []string{feature}
			}

			var baseline *models.PropertyFeatures
			if baselinePath != "" {
				record, err := loadRecord(baselinePath)
				if err != nil {
					return err
				}
				f, err := features.NewExtractor(nil).Extract(record)
				if err != nil {
					return err
				}
				baseline = &f
			}

			results := make([]models.ImpactResult, 0, len(names))
			for _, name := range names {
				var impact models.ImpactResult
				if baseline != nil {
					impact, err = regression.ImpactAt(model, *baseline, name)
				} else {
					impact, err = regression.Impact(model, name)
				}
				if err != nil {
					return err
				}
				results = append(results, impact)
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "Trained model file")
	cmd.Flags().StringVarP(&feature, "feature", "f", "", "Feature name (default: all features)")
	cmd.Flags().StringVarP(&baselinePath, "baseline", "b", "", "Property file to probe impacts around")

	return cmd
}
