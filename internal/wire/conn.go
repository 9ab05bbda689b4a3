package wire

import (
	"bufio"
	"net"
	"sync"
	"time"
)

// Conn frames a net.Conn. Sends are serialised so frames from concurrent
// writers never interleave; Receive must be called from one goroutine.
type Conn struct {
	nc           net.Conn
	r            *bufio.Reader
	wmu          sync.Mutex
	writeTimeout time.Duration
	limit        int
}

// NewConn wraps nc. A zero writeTimeout disables write deadlines.
func NewConn(nc net.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		nc:           nc,
		r:            bufio.NewReaderSize(nc, 64<<10),
		writeTimeout: writeTimeout,
		limit:        MaxFrameSize,
	}
}

// SetReadLimit lowers the maximum accepted payload size.
func (c *Conn) SetReadLimit(n int) {
	if n > 0 && n < MaxFrameSize {
		c.limit = n
	}
}

// Send writes v as one frame.
func (c *Conn) Send(v any) error {
	buf, err := Encode(v)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err = c.nc.Write(buf)
	return err
}

// Receive blocks until a whole frame arrives and decodes it into v.
func (c *Conn) Receive(v any) error {
	return readFrame(c.r, v, c.limit)
}

// SetReadDeadline forwards to the underlying connection.
func (c *Conn) SetReadDeadline(t time.Time) error { return c.nc.SetReadDeadline(t) }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }
