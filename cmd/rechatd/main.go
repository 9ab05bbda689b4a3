package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rechat/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var home, configPath, listen, httpListen, logLevel string
	cmd := &cobra.Command{
		Use:          "rechatd",
		Short:        "Run a standalone chat hub",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := app.DefaultHome()
				if err != nil {
					return err
				}
				home = dir
			}
			cfg, err := app.Load(home, configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("listen") {
				cfg.Listen = listen
			}
			if flags.Changed("http") {
				cfg.HTTPListen = httpListen
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			w, err := app.NewWire(cfg, log)
			if err != nil {
				return err
			}
			h, err := w.NewHub()
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Listen, err)
			}
			if err := w.ServeHub(cmd.Context(), h, ln); err != nil {
				return err
			}
			log.Info().Msg("hub stopped")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&home, "home", "", "config dir (default ~/.rechat)")
	f.StringVar(&configPath, "config", "", "config file (default <home>/rechat.toml)")
	f.StringVar(&listen, "listen", "", "TCP address (default from config, 0.0.0.0:6000)")
	f.StringVar(&httpListen, "http", "", "HTTP API address, empty disables")
	f.StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}
