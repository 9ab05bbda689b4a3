package hub

import (
	"time"

	"rechat/internal/wire"
)

// Config tunes a Hub. The zero value is usable; see DefaultConfig.
type Config struct {
	HelloTimeout time.Duration // time allowed for the first frame; 0 waits forever
	WriteTimeout time.Duration // per-frame write deadline; 0 disables
	MaxFrameSize int           // inbound payload limit in bytes, capped at wire.MaxFrameSize; 0 keeps the cap
	MessageRate  float64       // chat frames per second per peer; 0 disables limiting
	MessageBurst int           // burst allowance for MessageRate
}

// DefaultConfig returns the settings used by rechat host and rechatd.
func DefaultConfig() Config {
	return Config{
		HelloTimeout: 10 * time.Second,
		WriteTimeout: 10 * time.Second,
		MessageRate:  20,
		MessageBurst: 40,
	}
}

// readLimit is the inbound payload limit shared by TCP and WebSocket peers.
func (c Config) readLimit() int {
	if c.MaxFrameSize > 0 && c.MaxFrameSize < wire.MaxFrameSize {
		return c.MaxFrameSize
	}
	return wire.MaxFrameSize
}
