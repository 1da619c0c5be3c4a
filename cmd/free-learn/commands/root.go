package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/drakos74/free-learn/internal/config"
	"github.com/drakos74/free-learn/internal/metrics"
)

var (
	cfgFile     string
	logLevel    string
	metricsPort int
)

var rootCmd = &cobra.Command{
	Use:   "free-learn",
	Short: "Teachable image classifier",
	Long: `free-learn trains a small classifier on top of frame embeddings.

Frames come from a directory of images, where the label is the suffix of the file name
(e.g. 001_triangle.png), or from the screen.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level '%s': %w", logLevel, err)
		}
		zerolog.SetGlobalLevel(level)
		if metricsPort > 0 {
			go func() {
				if err := metrics.Serve(metricsPort); err != nil {
					log.Error().Err(err).Msg("metrics server stopped")
				}
			}()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file, json or yaml (default config if empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.PersistentFlags().IntVar(&metricsPort, "metrics-port", 0, "port for the prometheus metrics, disabled if 0")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(predictCmd)
}

func loadConfig() (config.Config, error) {
	if cfgFile == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(cfgFile)
}
