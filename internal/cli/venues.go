package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MiruVL/events/internal/venue"
)

func newVenuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Manage the venue registry",
	}
	cmd.AddCommand(newVenuesImportCmd())
	cmd.AddCommand(newVenuesListCmd())
	return cmd
}

func newVenuesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import venue definitions from a YAML seed file",
		Long: `Import venue definitions into the registry. Existing venues are updated
in place; their operational state and failure streak are preserved, so a
re-import never resets a disabled or warned venue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			venues, err := venue.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, v := range venues {
				if err := st.UpsertVenue(cmd.Context(), v); err != nil {
					return fmt.Errorf("importing venue %s: %w", v.ID, err)
				}
			}
			fmt.Fprintf(os.Stdout, "Imported %d venues.\n", len(venues))
			return nil
		},
	}
}

func newVenuesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered venues and their states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			venues, err := st.ListVenues(cmd.Context())
			if err != nil {
				return err
			}
			return WriteVenues(os.Stdout, venues, format)
		},
	}
}
