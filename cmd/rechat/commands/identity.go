package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rechat/internal/domain"
)

func identityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the local chat identity",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <id> [name]",
			Short: "Store the ID (and optional display name) used to join hubs",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) > 1 {
					name = args[1]
				}
				id, err := appCtx.Identity.Set(args[0], name)
				if err != nil {
					return err
				}
				printIdentity(cmd, id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored identity",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := appCtx.Identity.Require()
				if err != nil {
					return err
				}
				printIdentity(cmd, id)
				return nil
			},
		},
	)
	return cmd
}

func printIdentity(cmd *cobra.Command, id domain.Identity) {
	fmt.Fprintf(cmd.OutOrStdout(), "ID:   %s\nName: %s\n", id.ID, id.DisplayName())
}

// chatIdentity returns the stored identity, replacing it first when --id
// was given.
func chatIdentity(id, name string) (domain.Identity, error) {
	if id != "" {
		return appCtx.Identity.Set(id, name)
	}
	return appCtx.Identity.Require()
}
