package cli

import (
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the active image catalog as YAML",
		Long: `Catalog prints the images covers are chosen from, in resolution order.

The output is a catalog document that CATALOG_SOURCE=file accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := activeCatalog(cmd)
			if err != nil {
				return err
			}

			out, err := images.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
