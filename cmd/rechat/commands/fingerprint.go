package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the room secret fingerprint to compare with peers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx.Box == nil {
				return fmt.Errorf("no room secret configured. use --secret or RECHAT_SECRET")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", appCtx.Box.Fingerprint())
			return nil
		},
	}
}
