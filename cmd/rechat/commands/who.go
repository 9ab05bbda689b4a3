package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "who",
		Short: "Print the roster of the hub at --hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := appCtx.Relay()
			if err != nil {
				return err
			}
			roster, err := rc.Roster(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(roster) == 0 {
				fmt.Fprintln(out, "(nobody online)")
			}
			for _, e := range roster {
				fmt.Fprintf(out, "%-20s %s\n", e.ID, e.Addr)
			}
			return nil
		},
	}
}
