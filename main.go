// Command maintenance-cloud serves the predictive maintenance dashboard API
// and runs the prediction pipeline.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML config file; $MAINTENANCE_CONFIG when empty.
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "maintenance-cloud",
	Short: "Predictive maintenance reporting service",
	Long: `maintenance-cloud scores device features with a trained classifier,
keeps the latest failure risk per device and serves inventory, usage,
prediction and complaint views over HTTP.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default $MAINTENANCE_CONFIG)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(tokenCmd)
}
