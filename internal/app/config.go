package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"rechat/internal/client"
	"rechat/internal/hub"
)

// ConfigFilename is looked up in the home directory when no path is given.
const ConfigFilename = "rechat.toml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string `toml:"-"`           // config directory, e.g. $HOME/.rechat
	Listen     string `toml:"listen"`      // hub TCP address for host and rechatd
	HTTPListen string `toml:"http_listen"` // optional hub HTTP address, empty disables
	Server     string `toml:"server"`      // default hub for connect, host[:port]
	HubURL     string `toml:"hub_url"`     // hub HTTP base URL for who and announce
	RecvDir    string `toml:"recv_dir"`    // received images
	Secret     string `toml:"secret"`      // room secret, empty sends plaintext

	Log    LogConfig    `toml:"log"`
	Hub    HubConfig    `toml:"hub"`
	Client ClientConfig `toml:"client"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `toml:"format" validate:"oneof=console json"`
}

type HubConfig struct {
	HelloTimeout string  `toml:"hello_timeout" validate:"omitempty,duration"` // e.g. "10s"
	WriteTimeout string  `toml:"write_timeout" validate:"omitempty,duration"`
	MaxFrameSize int     `toml:"max_frame_size" validate:"min=0"`
	MessageRate  float64 `toml:"message_rate" validate:"min=0"` // frames per second per peer, 0 disables
	MessageBurst int     `toml:"message_burst" validate:"min=0"`
}

type ClientConfig struct {
	DialTimeout  string `toml:"dial_timeout" validate:"omitempty,duration"`
	RetryDelay   string `toml:"retry_delay" validate:"omitempty,duration"`
	WriteTimeout string `toml:"write_timeout" validate:"omitempty,duration"`
}

// DefaultHome returns $HOME/.rechat.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".rechat"), nil
}

// DefaultConfig returns the built-in settings rooted at home.
func DefaultConfig(home string) *Config {
	hc := hub.DefaultConfig()
	cc := client.DefaultConfig("")
	return &Config{
		Home:    home,
		Listen:  "0.0.0.0:6000",
		Server:  "127.0.0.1:6000",
		RecvDir: filepath.Join(os.TempDir(), "realtime_chat_recv"),
		Log:     LogConfig{Level: "info", Format: "console"},
		Hub: HubConfig{
			HelloTimeout: hc.HelloTimeout.String(),
			WriteTimeout: hc.WriteTimeout.String(),
			MessageRate:  hc.MessageRate,
			MessageBurst: hc.MessageBurst,
		},
		Client: ClientConfig{
			DialTimeout:  cc.DialTimeout.String(),
			RetryDelay:   cc.RetryDelay.String(),
			WriteTimeout: cc.WriteTimeout.String(),
		},
	}
}

// Load builds a Config with priority: defaults -> TOML file -> .env -> env.
// An empty path reads <home>/rechat.toml if it exists; an explicit path
// must exist. Flags are applied by the caller afterwards.
func Load(home, path string) (*Config, error) {
	cfg := DefaultConfig(home)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, ConfigFilename)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config: %w", err)
	}

	// Existing environment wins over .env files, the working directory
	// wins over home.
	for _, f := range []string{".env", filepath.Join(home, ".env")} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", f, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies RECHAT_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) error {
	for env, dst := range map[string]*string{
		"RECHAT_LISTEN":      &cfg.Listen,
		"RECHAT_HTTP_LISTEN": &cfg.HTTPListen,
		"RECHAT_SERVER":      &cfg.Server,
		"RECHAT_HUB_URL":     &cfg.HubURL,
		"RECHAT_RECV_DIR":    &cfg.RecvDir,
		"RECHAT_SECRET":      &cfg.Secret,
		"RECHAT_LOG_LEVEL":   &cfg.Log.Level,
		"RECHAT_LOG_FORMAT":  &cfg.Log.Format,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}
	if v := os.Getenv("RECHAT_HUB_MESSAGE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: RECHAT_HUB_MESSAGE_RATE: %w", err)
		}
		cfg.Hub.MessageRate = rate
	}
	return nil
}

// Validate checks enumerations, durations and ranges.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// HubSettings converts the hub section to hub.Config.
func (c *Config) HubSettings() (hub.Config, error) {
	out := hub.Config{
		MaxFrameSize: c.Hub.MaxFrameSize,
		MessageRate:  c.Hub.MessageRate,
		MessageBurst: c.Hub.MessageBurst,
	}
	var err error
	if out.HelloTimeout, err = parseDuration("hub.hello_timeout", c.Hub.HelloTimeout); err != nil {
		return hub.Config{}, err
	}
	if out.WriteTimeout, err = parseDuration("hub.write_timeout", c.Hub.WriteTimeout); err != nil {
		return hub.Config{}, err
	}
	return out, nil
}

// ClientSettings converts the client section to client.Config for addr.
func (c *Config) ClientSettings(addr string) (client.Config, error) {
	out := client.Config{Addr: client.NormalizeAddr(addr)}
	var err error
	if out.DialTimeout, err = parseDuration("client.dial_timeout", c.Client.DialTimeout); err != nil {
		return client.Config{}, err
	}
	if out.RetryDelay, err = parseDuration("client.retry_delay", c.Client.RetryDelay); err != nil {
		return client.Config{}, err
	}
	if out.WriteTimeout, err = parseDuration("client.write_timeout", c.Client.WriteTimeout); err != nil {
		return client.Config{}, err
	}
	return out, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
