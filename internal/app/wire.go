package app

import (
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"rechat/internal/client"
	"rechat/internal/crypto"
	"rechat/internal/domain"
	"rechat/internal/hub"
	"rechat/internal/relay"
	"rechat/internal/services/chat"
	"rechat/internal/services/identity"
	"rechat/internal/store"
)

// Wire bundles the stores, services and factories commands use.
type Wire struct {
	Config   *Config
	Log      zerolog.Logger
	Identity *identity.Service
	Images   *store.ImageDirStore
	Box      *crypto.RoomBox // nil without a room secret
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg *Config, log zerolog.Logger) (*Wire, error) {
	w := &Wire{
		Config:   cfg,
		Log:      log,
		Identity: identity.New(store.NewIdentityFileStore(cfg.Home)),
		Images:   store.NewImageDirStore(cfg.RecvDir),
		HTTP:     http.DefaultClient,
	}
	if cfg.Secret != "" {
		box, err := crypto.NewRoomBox(cfg.Secret)
		if err != nil {
			return nil, err
		}
		w.Box = box
	}
	return w, nil
}

// NewHub builds a hub from the [hub] settings.
func (w *Wire) NewHub() (*hub.Hub, error) {
	hc, err := w.Config.HubSettings()
	if err != nil {
		return nil, err
	}
	return hub.New(hc, w.Log), nil
}

// Relay returns an HTTP client for the hub API at Config.HubURL.
func (w *Wire) Relay() (*relay.HTTP, error) {
	if w.Config.HubURL == "" {
		return nil, fmt.Errorf("no hub URL configured (use --hub or hub_url)")
	}
	return relay.NewHTTP(w.Config.HubURL, w.HTTP), nil
}

// Chat is a session bound to a reconnecting client.
type Chat struct {
	Session *chat.Session
	Client  *client.Client
}

// NewChat builds a session for self printing to out, connected to addr.
func (w *Wire) NewChat(self domain.Identity, addr string, out io.Writer) (*Chat, error) {
	cc, err := w.Config.ClientSettings(addr)
	if err != nil {
		return nil, err
	}
	sess := chat.NewSession(self, out, chat.Options{
		Box:    w.Box,
		Images: w.Images,
		Log:    w.Log.With().Str("component", "chat").Logger(),
	})
	c := client.New(cc, self, sess.HandleFrame, w.Log)
	c.OnStateChange(func(connected bool) {
		if connected {
			fmt.Fprintf(out, "-- connected to %s\n", cc.Addr)
		} else {
			fmt.Fprintln(out, "-- disconnected, reconnecting")
		}
	})
	sess.SetSender(c)
	return &Chat{Session: sess, Client: c}, nil
}
