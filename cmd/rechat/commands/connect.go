package commands

import (
	"github.com/spf13/cobra"
)

func connectCmd() *cobra.Command {
	var id, name string
	cmd := &cobra.Command{
		Use:   "connect [host[:port]]",
		Short: "Join a hub and chat from this terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			self, err := chatIdentity(id, name)
			if err != nil {
				return err
			}
			addr := appCtx.Config.Server
			if len(args) == 1 {
				addr = args[0]
			}
			c, err := appCtx.NewChat(self, addr, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runREPL(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "set and use this ID")
	cmd.Flags().StringVar(&name, "name", "", "display name to go with --id")
	return cmd
}
