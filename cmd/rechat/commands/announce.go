package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func announceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "announce <text>",
		Short: "Broadcast a notice to everyone on the hub at --hub",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := appCtx.Relay()
			if err != nil {
				return err
			}
			if err := rc.Announce(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Announced.")
			return nil
		},
	}
}
