package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rechat/internal/domain"
	"rechat/internal/wire"
)

// ErrNotConnected is returned by Send while no hub connection is live.
var ErrNotConnected = errors.New("not connected to a hub")

// Config controls dialing and reconnection.
type Config struct {
	Addr         string        // hub address, host:port
	DialTimeout  time.Duration // per attempt
	RetryDelay   time.Duration // pause between attempts
	WriteTimeout time.Duration // per-frame write deadline
}

// DefaultConfig returns the standard timings for addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		RetryDelay:   time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// NormalizeAddr adds the default port when addr has none.
func NormalizeAddr(addr string) string {
	if addr == "" {
		return net.JoinHostPort("127.0.0.1", strconv.Itoa(domain.DefaultPort))
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(domain.DefaultPort))
}

// Handler receives every frame the hub sends.
type Handler func(domain.Frame)

// Client is a reconnecting hub connection.
type Client struct {
	cfg    Config
	self   domain.Identity
	handle Handler
	log    zerolog.Logger

	mu      sync.Mutex
	conn    *wire.Conn
	onState func(connected bool)
}

// New returns a Client for self. handle may be nil.
func New(cfg Config, self domain.Identity, handle Handler, log zerolog.Logger) *Client {
	if handle == nil {
		handle = func(domain.Frame) {}
	}
	return &Client{
		cfg:    cfg,
		self:   self,
		handle: handle,
		log:    log.With().Str("component", "client").Str("hub", cfg.Addr).Logger(),
	}
}

// OnStateChange registers fn to be told when the connection comes and goes.
func (c *Client) OnStateChange(fn func(connected bool)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// Run connects and reconnects until ctx ends.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.log.Debug().Err(err).Dur("retry_in", c.cfg.RetryDelay).Msg("hub connection ended")

		t := time.NewTimer(c.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// Connected reports whether a hub connection is live.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send delivers f to the hub.
func (c *Client) Send(f domain.Frame) error {
	c.mu.Lock()
	wc := c.conn
	c.mu.Unlock()
	if wc == nil {
		return ErrNotConnected
	}
	if err := wc.Send(f); err != nil {
		return fmt.Errorf("send %s: %w", f.Type, err)
	}
	return nil
}

func (c *Client) session(ctx context.Context) error {
	d := net.Dialer{Timeout: c.cfg.DialTimeout}
	nc, err := d.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return err
	}
	wc := wire.NewConn(nc, c.cfg.WriteTimeout)
	defer wc.Close()
	stop := context.AfterFunc(ctx, func() { _ = wc.Close() })
	defer stop()

	if err := wc.Send(domain.Frame{Type: domain.FrameHello, ID: c.self.ID, Name: c.self.DisplayName()}); err != nil {
		return err
	}
	if err := wc.Send(domain.Frame{Type: domain.FramePresenceReq}); err != nil {
		return err
	}
	c.setConn(wc)
	defer c.setConn(nil)
	c.log.Info().Str("id", c.self.ID).Msg("connected")

	for {
		var f domain.Frame
		if err := wc.Receive(&f); err != nil {
			return err
		}
		c.dispatch(f)
	}
}

func (c *Client) dispatch(f domain.Frame) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("type", string(f.Type)).Msg("frame handler panicked")
		}
	}()
	c.handle(f)
}

func (c *Client) setConn(wc *wire.Conn) {
	c.mu.Lock()
	changed := (c.conn == nil) != (wc == nil)
	c.conn = wc
	fn := c.onState
	c.mu.Unlock()
	if changed && fn != nil {
		fn(wc != nil)
	}
}
