package main

import (
	"fmt"

	"github.com/spf13/cobra"

	predictionapp "maintenance-cloud/internal/prediction/application"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score the features file and write the predictions snapshot",
	Long: `Score the features file with the configured model, keep the latest row
per device and overwrite the predictions snapshot.

Examples:
  MODEL_PATH=models/rf_model.json maintenance-cloud predict`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	result, err := a.engine.Run(cmd.Context(), predictionapp.TriggerCLI)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote predictions to: %s (%d devices, run %s)\n", result.SnapshotLoc, result.Devices, result.RunID)
	return nil
}
