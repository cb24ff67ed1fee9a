package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"go-cover-resolver/internal/catalog"
	"go-cover-resolver/internal/client"
	"go-cover-resolver/internal/config"
	"go-cover-resolver/internal/factory"
	"go-cover-resolver/internal/service"
	"go-cover-resolver/pkg/models"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var (
		description string
		server      string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "resolve TITLE",
		Short: "Print the cover a title resolves to",
		Long: `Resolve prints the generate-cover response for TITLE.

Without --server the active catalog is used directly. With --server the
remote service is asked first and the local catalog is the fallback.`,
		Example: `  coverapi resolve "Dune" --description "sci-fi"
  coverapi resolve "Dune" --server http://localhost:5001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := activeCatalog(cmd)
			if err != nil {
				return err
			}

			var resp *models.CoverResponse
			if server != "" {
				url := client.New(server, timeout, images).CoverURL(cmd.Context(), args[0], description)
				resp = &models.CoverResponse{
					URL:         url,
					Title:       args[0],
					Description: description,
					Status:      models.StatusSuccess,
				}
			} else {
				resp, err = service.NewCoverService(images, nil).GenerateCover(cmd.Context(), models.CoverRequest{
					Title:       args[0],
					Description: description,
				})
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Book description echoed in the response")
	cmd.Flags().StringVar(&server, "server", "", "Base URL of a running cover service")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Timeout for the remote call")

	return cmd
}

func activeCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return factory.LoadCatalog(cmd.Context(), cfg, factory.NewStorageFactory(cfg))
}
