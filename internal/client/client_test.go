package client_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"rechat/internal/client"
	"rechat/internal/domain"
	"rechat/internal/hub"
	"rechat/internal/wire"
)

type frameLog struct {
	mu     sync.Mutex
	frames []domain.Frame
}

func (l *frameLog) add(f domain.Frame) {
	l.mu.Lock()
	l.frames = append(l.frames, f)
	l.mu.Unlock()
}

func (l *frameLog) find(typ domain.FrameType, body string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.frames {
		if f.Type == typ && f.Body == body {
			return true
		}
	}
	return false
}

func (l *frameLog) rosterSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := -1
	for _, f := range l.frames {
		if f.Type == domain.FrameRoster {
			n = len(f.List)
		}
	}
	return n
}

func fastConfig(addr string) client.Config {
	cfg := client.DefaultConfig(addr)
	cfg.DialTimeout = time.Second
	cfg.RetryDelay = 20 * time.Millisecond
	return cfg
}

func runClient(t *testing.T, c *client.Client) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("client did not stop")
		}
	})
}

func TestNormalizeAddr(t *testing.T) {
	require.Equal(t, "127.0.0.1:6000", client.NormalizeAddr(""))
	require.Equal(t, "10.0.0.7:6000", client.NormalizeAddr("10.0.0.7"))
	require.Equal(t, "10.0.0.7:7000", client.NormalizeAddr("10.0.0.7:7000"))
	require.Equal(t, "[::1]:6000", client.NormalizeAddr("::1"))
}

func TestClient_SendBeforeConnect(t *testing.T) {
	c := client.New(fastConfig("127.0.0.1:1"), domain.Identity{ID: "a"}, nil, zerolog.Nop())
	require.False(t, c.Connected())
	require.ErrorIs(t, c.Send(domain.Frame{Type: domain.FrameMsg}), client.ErrNotConnected)
}

func TestClient_JoinsHubAndExchangesMessages(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	h := hub.New(hub.DefaultConfig(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.Serve(ctx, ln) }()
	t.Cleanup(func() { cancel(); _ = h.Close() })

	var got frameLog
	var states []bool
	var stMu sync.Mutex
	c := client.New(fastConfig(ln.Addr().String()), domain.Identity{ID: "alice", Name: "Alice"}, got.add, zerolog.Nop())
	c.OnStateChange(func(up bool) {
		stMu.Lock()
		states = append(states, up)
		stMu.Unlock()
	})
	runClient(t, c)

	require.Eventually(t, func() bool { return got.rosterSize() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.True(t, c.Connected())
	require.Equal(t, "Alice", h.Roster()[0].ID)

	nc, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	bob := wire.NewConn(nc, time.Second)
	t.Cleanup(func() { _ = bob.Close() })
	require.NoError(t, bob.Send(domain.Frame{Type: domain.FrameHello, ID: "bob"}))
	require.NoError(t, bob.Send(domain.Frame{Type: domain.FrameMsg, From: "bob", To: "Alice", Body: "hi alice"}))
	require.Eventually(t, func() bool { return got.find(domain.FrameMsg, "hi alice") }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Send(domain.Frame{Type: domain.FrameMsg, From: "alice", Body: "hi all"}))
	for {
		require.NoError(t, bob.SetReadDeadline(time.Now().Add(2*time.Second)))
		var f domain.Frame
		require.NoError(t, bob.Receive(&f))
		if f.Type == domain.FrameMsg {
			require.Equal(t, "hi all", f.Body)
			break
		}
	}

	stMu.Lock()
	require.Equal(t, []bool{true}, states)
	stMu.Unlock()
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	hellos := make(chan domain.Frame, 4)
	kept := make(chan *wire.Conn, 1)
	t.Cleanup(func() {
		select {
		case wc := <-kept:
			_ = wc.Close()
		default:
		}
	})
	go func() {
		for i := 0; i < 2; i++ {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			wc := wire.NewConn(nc, time.Second)
			var hello, req domain.Frame
			if wc.Receive(&hello) == nil && wc.Receive(&req) == nil && req.Type == domain.FramePresenceReq {
				hellos <- hello
			}
			if i == 0 {
				_ = wc.Close()
				continue
			}
			kept <- wc
		}
	}()

	c := client.New(fastConfig(ln.Addr().String()), domain.Identity{ID: "carol"}, nil, zerolog.Nop())
	runClient(t, c)

	for i := 0; i < 2; i++ {
		select {
		case hello := <-hellos:
			require.Equal(t, domain.FrameHello, hello.Type)
			require.Equal(t, "carol", hello.ID)
			require.Equal(t, "carol", hello.Name)
		case <-time.After(3 * time.Second):
			t.Fatalf("hello %d not received", i+1)
		}
	}
}
