package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"rechat/internal/app"
)

var (
	home       string
	configPath string
	logLevel   string
	secret     string
	hubURL     string

	appCtx *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rechat",
		Short:         "Realtime LAN chat",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := app.DefaultHome()
				if err != nil {
					return err
				}
				home = dir
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			cfg, err := app.Load(home, configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("secret") {
				cfg.Secret = secret
			}
			if flags.Changed("hub") {
				cfg.HubURL = hubURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			appCtx, err = app.NewWire(cfg, log)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "config dir (default ~/.rechat)")
	pf.StringVar(&configPath, "config", "", "config file (default <home>/rechat.toml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error, disabled")
	pf.StringVar(&secret, "secret", "", "room secret; peers must share it to read each other")
	pf.StringVar(&hubURL, "hub", "", "hub HTTP base URL (e.g. http://127.0.0.1:8080)")

	root.AddCommand(
		identityCmd(),
		hostCmd(),
		connectCmd(),
		whoCmd(),
		announceCmd(),
		fingerprintCmd(),
		manifestCmd(),
	)
	return root
}
