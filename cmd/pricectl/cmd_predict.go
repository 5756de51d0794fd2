package main

import (
	"github.com/spf13/cobra"

	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/regression"
)

func newPredictCommand() *cobra.Command {
	var modelPath, propertyPath string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the price of a property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			record, err := loadRecord(propertyPath)
			if err != nil {
				return err
			}
			f, err := features.NewExtractor(nil).Extract(record)
			if err != nil {
				return err
			}
			prediction, err := regression.Predict(f, model)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), prediction)
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "Trained model file")
	cmd.Flags().StringVarP(&propertyPath, "property", "p", "", "Property file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("property")

	return cmd
}
