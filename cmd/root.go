package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/config"
)

var cfg *config.Config

var (
	inputDir  string
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:   "desigualdade",
	Short: "Gender gap in STEM higher education across Brazilian municipalities",
	Long:  "Reads the yearly INEP higher-education course microdata, measures the female share of STEM enrollment per municipality, micro-region and region, clusters municipalities into A/B/C profiles and exports the tables.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if inputDir != "" {
			c.Input.Dir = inputDir
		}
		if outputDir != "" {
			c.Output.Dir = outputDir
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&inputDir, "input", "", "directory with the yearly microdata files (overrides input.dir)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "directory for exported files (overrides output.dir)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
