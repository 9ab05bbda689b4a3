package hub

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// wsConn adapts a WebSocket to the hub's framed conn: one JSON object per
// text message instead of a length prefix.
type wsConn struct {
	ws           *websocket.Conn
	wmu          sync.Mutex
	writeTimeout time.Duration
}

func newWSConn(ws *websocket.Conn, cfg Config) *wsConn {
	ws.SetReadLimit(int64(cfg.readLimit()))
	return &wsConn{ws: ws, writeTimeout: cfg.WriteTimeout}
}

func (c *wsConn) Send(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Receive(v any) error { return c.ws.ReadJSON(v) }

func (c *wsConn) SetReadDeadline(t time.Time) error { return c.ws.SetReadDeadline(t) }

func (c *wsConn) Close() error { return c.ws.Close() }

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := newWSConn(ws, h.cfg)
	if !h.track(c) {
		_ = ws.Close()
		return
	}
	defer h.untrack(c)
	h.serveConn(c, remoteIP(r.RemoteAddr))
}
