package commands

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func hostCmd() *cobra.Command {
	var id, name, listen, httpListen string
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Start a hub and join it from this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			self, err := chatIdentity(id, name)
			if err != nil {
				return err
			}
			cfg := appCtx.Config
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTPListen = httpListen
			}

			h, err := appCtx.NewHub()
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("host: listen %s: %w", cfg.Listen, err)
			}
			port := ln.Addr().(*net.TCPAddr).Port
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "-- hosting on port %d\n", port)

			c, err := appCtx.NewChat(self, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), out)
			if err != nil {
				_ = ln.Close()
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return appCtx.ServeHub(ctx, h, ln) })
			g.Go(func() error {
				defer cancel()
				return runREPL(ctx, c, cmd.InOrStdin(), out)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "set and use this ID")
	cmd.Flags().StringVar(&name, "name", "", "display name to go with --id")
	cmd.Flags().StringVar(&listen, "listen", "", "hub TCP address (default from config, 0.0.0.0:6000)")
	cmd.Flags().StringVar(&httpListen, "http", "", "also serve the hub HTTP API on this address")
	return cmd
}
