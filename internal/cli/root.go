package cli

import (
	"os"

	"go-cover-resolver/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "coverapi",
		Short: "Deterministic book cover resolver",
		Long: `coverapi maps a book title to one of a fixed set of stock cover images.

The same title always resolves to the same image, across restarts and hosts.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if logLevel == "" {
				logLevel = os.Getenv("LOG_LEVEL")
			}
			logger.SetLevel(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $LOG_LEVEL")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newCatalogCmd())

	return cmd
}
