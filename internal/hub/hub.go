package hub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rechat/internal/domain"
	"rechat/internal/wire"
)

// AnnounceSender is the From of frames created by Announce.
const AnnounceSender = "hub"

// Hub tracks joined peers and routes frames between them.
type Hub struct {
	cfg Config
	log zerolog.Logger

	mu        sync.RWMutex
	peers     []*peer // join order
	conns     map[conn]struct{}
	listeners []net.Listener
	closed    bool
	wg        sync.WaitGroup
}

// New returns a Hub that is ready to Serve.
func New(cfg Config, log zerolog.Logger) *Hub {
	return &Hub{
		cfg:   cfg,
		log:   log.With().Str("component", "hub").Logger(),
		conns: make(map[conn]struct{}),
	}
}

// ListenAndServe listens on addr and serves TCP peers until ctx ends.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("hub listen %s: %w", addr, err)
	}
	return h.Serve(ctx, ln)
}

// Serve accepts TCP peers on ln until ctx ends or the hub is closed. It
// always closes ln before returning.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	if !h.addListener(ln) {
		_ = ln.Close()
		return net.ErrClosed
	}
	h.log.Info().Str("addr", ln.Addr().String()).Msg("hub listening")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
				h.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")
				time.Sleep(backoff)
				continue
			}
			_ = ln.Close()
			return fmt.Errorf("hub accept: %w", err)
		}
		backoff = 0

		wc := wire.NewConn(nc, h.cfg.WriteTimeout)
		wc.SetReadLimit(h.cfg.readLimit())
		if !h.track(wc) {
			_ = nc.Close()
			return nil
		}
		go func() {
			defer h.untrack(wc)
			h.serveConn(wc, remoteIP(wc.RemoteAddr().String()))
		}()
	}
}

// Close disconnects every peer, closes all listeners and waits for the
// connection goroutines to finish.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.peers = nil
	conns := make([]conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	listeners := h.listeners
	h.listeners = nil
	h.mu.Unlock()

	for _, ln := range listeners {
		_ = ln.Close()
	}
	for _, c := range conns {
		_ = c.Close()
	}
	h.wg.Wait()
	return nil
}

// Roster lists joined peers in join order. ID is the display name.
func (h *Hub) Roster() []domain.RosterEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.RosterEntry, 0, len(h.peers))
	for _, p := range h.peers {
		out = append(out, domain.RosterEntry{ID: p.name, Addr: p.addr})
	}
	return out
}

// Announce broadcasts a message from the hub itself to every peer.
func (h *Hub) Announce(body string) {
	h.broadcast(domain.Frame{
		Type: domain.FrameMsg,
		From: AnnounceSender,
		Body: body,
		TS:   domain.Timestamp(time.Now()),
	}, nil)
}

func (h *Hub) serveConn(c conn, addr string) {
	defer c.Close()

	log := h.log.With().Str("addr", addr).Logger()
	if h.cfg.HelloTimeout > 0 {
		_ = c.SetReadDeadline(time.Now().Add(h.cfg.HelloTimeout))
	}
	var hello domain.Frame
	if err := c.Receive(&hello); err != nil {
		log.Debug().Err(err).Msg("no hello")
		return
	}
	if hello.Type != domain.FrameHello || strings.TrimSpace(hello.ID) == "" {
		log.Warn().Str("type", string(hello.Type)).Msg("rejected connection without a valid hello")
		return
	}
	_ = c.SetReadDeadline(time.Time{})

	p := newPeer(c, addr, h.cfg)
	p.id = hello.ID
	p.name = hello.Name
	if p.name == "" {
		p.name = hello.ID
	}
	if !h.register(p) {
		return
	}
	log = log.With().Str("sid", p.sid).Str("peer", p.name).Logger()
	log.Info().Str("id", p.id).Msg("peer joined")

	h.broadcast(domain.Frame{Type: domain.FramePresence, Event: domain.PresenceOnline, ID: p.id, Name: p.name}, nil)
	h.sendTo(p, h.rosterFrame())

	for {
		var f domain.Frame
		if err := c.Receive(&f); err != nil {
			log.Debug().Err(err).Msg("read ended")
			break
		}
		h.dispatch(p, f, log)
	}

	h.remove(p)
	p.close()
	log.Info().Msg("peer left")
	h.broadcast(domain.Frame{Type: domain.FramePresence, Event: domain.PresenceOffline, ID: p.name}, nil)
}

func (h *Hub) dispatch(p *peer, f domain.Frame, log zerolog.Logger) {
	switch {
	case f.IsChat():
		if !p.allow() {
			log.Warn().Str("type", string(f.Type)).Msg("rate limit exceeded, frame dropped")
			return
		}
		if f.From == "" {
			f.From = p.name
		}
		if f.To == "" {
			h.broadcast(f, p)
			return
		}
		target := h.lookup(f.To)
		if target == nil {
			log.Debug().Str("to", f.To).Msg("direct message to unknown peer dropped")
			return
		}
		h.sendTo(target, f)
	case f.Type == domain.FramePresenceReq:
		h.sendTo(p, h.rosterFrame())
	default:
		log.Debug().Str("type", string(f.Type)).Msg("ignored frame")
	}
}

func (h *Hub) rosterFrame() domain.Frame {
	return domain.Frame{Type: domain.FrameRoster, List: h.Roster()}
}

// lookup returns the earliest joined peer whose display name is name.
func (h *Hub) lookup(name string) *peer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.peers {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (h *Hub) broadcast(f domain.Frame, exclude *peer) {
	h.mu.RLock()
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		if p != exclude {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		h.sendTo(p, f)
	}
}

func (h *Hub) sendTo(p *peer, f domain.Frame) {
	if err := p.conn.Send(f); err != nil {
		h.log.Warn().Err(err).Str("sid", p.sid).Str("peer", p.name).Msg("write failed, dropping peer")
		h.remove(p)
		p.close()
	}
}

func (h *Hub) register(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers = append(h.peers, p)
	return true
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, q := range h.peers {
		if q == p {
			h.peers = append(h.peers[:i:i], h.peers[i+1:]...)
			return
		}
	}
}

func (h *Hub) addListener(ln net.Listener) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.listeners = append(h.listeners, ln)
	return true
}

// track registers c for shutdown unless the hub is closing.
func (h *Hub) track(c conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Hub) untrack(c conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	h.wg.Done()
}
