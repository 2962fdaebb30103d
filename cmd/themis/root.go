package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/config"
)

func newRootCommand() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		mode       string
		workers    int
		delay      string
	)

	cmd := &cobra.Command{
		Use:   "themis",
		Short: "Batch acquittal analysis over criminal court records",
		Long: `themis reads a list of CPF identifiers, pulls each subject's criminal
case records from the data provider, and classifies whether the subject was
acquitted, writing one CSV row per input identifier.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; real deployments use the environment.
			_ = godotenv.Load()

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			cfg, err := config.Load(func(c *config.Config) {
				applyFlags(cmd, c, mode, workers, delay)
			})
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			return runPipeline(cfg, inputPath, outputPath, logger)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input file with one CPF per line, or a CSV with a cpf column")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "results.csv", "output CSV path")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "classifier mode: pattern or semantic")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size")
	cmd.Flags().StringVarP(&delay, "delay", "d", "", "minimum interval between external calls, e.g. 300ms")
	cmd.MarkFlagRequired("input")

	return cmd
}

// applyFlags layers explicit command-line values over file and overlay
// values before validation runs. Matching environment variables are cleared
// so a flag always wins over the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config, mode string, workers int, delay string) {
	if cmd.Flags().Changed("mode") {
		os.Unsetenv(config.EnvMode)
		cfg.Batch.Mode = mode
	}
	if cmd.Flags().Changed("workers") {
		os.Unsetenv(config.EnvWorkers)
		cfg.Batch.Workers = workers
	}
	if cmd.Flags().Changed("delay") {
		os.Unsetenv(config.EnvDelay)
		cfg.Batch.Delay = delay
	}
}
