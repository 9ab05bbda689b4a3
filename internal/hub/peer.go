package hub

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// conn is a framed, bidirectional peer connection.
type conn interface {
	Send(v any) error
	Receive(v any) error
	SetReadDeadline(t time.Time) error
	Close() error
}

type peer struct {
	sid     string
	conn    conn
	addr    string
	id      string
	name    string
	limiter *rate.Limiter

	closeOnce sync.Once
}

func newPeer(c conn, addr string, cfg Config) *peer {
	p := &peer{sid: uuid.NewString(), conn: c, addr: addr}
	if cfg.MessageRate > 0 {
		burst := cfg.MessageBurst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.MessageRate), burst)
	}
	return p
}

func (p *peer) allow() bool {
	return p.limiter == nil || p.limiter.Allow()
}

func (p *peer) close() {
	p.closeOnce.Do(func() { _ = p.conn.Close() })
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
