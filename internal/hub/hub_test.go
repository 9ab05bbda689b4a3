package hub_test

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"rechat/internal/domain"
	"rechat/internal/hub"
	"rechat/internal/wire"
)

func startHub(t *testing.T, cfg hub.Config) (*hub.Hub, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := hub.New(cfg, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, h.Close())
		require.NoError(t, <-done)
	})
	return h, ln.Addr().String()
}

type testPeer struct {
	t *testing.T
	c *wire.Conn
}

func dialRaw(t *testing.T, addr string) *testPeer {
	t.Helper()
	nc, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	p := &testPeer{t: t, c: wire.NewConn(nc, time.Second)}
	t.Cleanup(func() { _ = p.c.Close() })
	return p
}

// join connects, says hello and consumes the frames the hub sends a newcomer.
func join(t *testing.T, addr, id, name string) *testPeer {
	t.Helper()
	p := dialRaw(t, addr)
	p.send(domain.Frame{Type: domain.FrameHello, ID: id, Name: name})
	p.next(domain.FramePresence)
	p.next(domain.FrameRoster)
	return p
}

func (p *testPeer) send(f domain.Frame) {
	p.t.Helper()
	require.NoError(p.t, p.c.Send(f))
}

// next returns the next frame of the given type, skipping others.
func (p *testPeer) next(typ domain.FrameType) domain.Frame {
	p.t.Helper()
	_, f := p.until(func(f domain.Frame) bool { return f.Type == typ })
	return f
}

// until reads frames until match accepts one. It returns the frames read
// before it.
func (p *testPeer) until(match func(domain.Frame) bool) (skipped []domain.Frame, got domain.Frame) {
	p.t.Helper()
	for {
		require.NoError(p.t, p.c.SetReadDeadline(time.Now().Add(2*time.Second)))
		var f domain.Frame
		require.NoError(p.t, p.c.Receive(&f))
		if match(f) {
			return skipped, f
		}
		skipped = append(skipped, f)
	}
}

func body(b string) func(domain.Frame) bool {
	return func(f domain.Frame) bool { return f.Type == domain.FrameMsg && f.Body == b }
}

func requireNoChat(t *testing.T, frames []domain.Frame) {
	t.Helper()
	for _, f := range frames {
		require.False(t, f.IsChat(), "unexpected %s frame %+v", f.Type, f)
	}
}

func TestHub_RejectsConnectionWithoutHello(t *testing.T) {
	_, addr := startHub(t, hub.DefaultConfig())

	p := dialRaw(t, addr)
	p.send(domain.Frame{Type: domain.FrameMsg, Body: "too early"})

	require.NoError(t, p.c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f domain.Frame
	require.Error(t, p.c.Receive(&f))
}

func TestHub_RejectsHelloWithoutID(t *testing.T) {
	h, addr := startHub(t, hub.DefaultConfig())

	p := dialRaw(t, addr)
	p.send(domain.Frame{Type: domain.FrameHello, Name: "nobody"})

	require.NoError(t, p.c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f domain.Frame
	require.Error(t, p.c.Receive(&f))
	require.Empty(t, h.Roster())
}

func TestHub_HelloTimeout(t *testing.T) {
	cfg := hub.DefaultConfig()
	cfg.HelloTimeout = 100 * time.Millisecond
	_, addr := startHub(t, cfg)

	p := dialRaw(t, addr)
	require.NoError(t, p.c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f domain.Frame
	err := p.c.Receive(&f)
	require.Error(t, err)
	var ne net.Error
	if errors.As(err, &ne) {
		require.False(t, ne.Timeout(), "hub should close first")
	}
}

func TestHub_JoinAnnouncesPresenceAndSendsRoster(t *testing.T) {
	h, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "alice@example.com", "Alice")

	bob := dialRaw(t, addr)
	bob.send(domain.Frame{Type: domain.FrameHello, ID: "bob@example.com"})

	online := alice.next(domain.FramePresence)
	require.Equal(t, domain.PresenceOnline, online.Event)
	require.Equal(t, "bob@example.com", online.ID)
	require.Equal(t, "bob@example.com", online.Name)

	own := bob.next(domain.FramePresence)
	require.Equal(t, "bob@example.com", own.ID)

	roster := bob.next(domain.FrameRoster)
	require.Equal(t, []domain.RosterEntry{
		{ID: "Alice", Addr: "127.0.0.1"},
		{ID: "bob@example.com", Addr: "127.0.0.1"},
	}, roster.List)
	require.Len(t, h.Roster(), 2)
}

func TestHub_PresenceRequestReturnsRoster(t *testing.T) {
	_, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "a", "Alice")
	alice.send(domain.Frame{Type: domain.FramePresenceReq})

	roster := alice.next(domain.FrameRoster)
	require.Len(t, roster.List, 1)
	require.Equal(t, "Alice", roster.List[0].ID)
}

func TestHub_DirectMessageReachesOnlyTarget(t *testing.T) {
	_, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "a", "Alice")
	bob := join(t, addr, "b", "Bob")
	carol := join(t, addr, "c", "Carol")

	alice.send(domain.Frame{Type: domain.FrameMsg, From: "a", To: "Bob", Body: "psst", TS: 10})
	alice.send(domain.Frame{Type: domain.FrameMsg, From: "a", Body: "hello all", TS: 11})

	got := bob.next(domain.FrameMsg)
	require.Equal(t, "psst", got.Body)
	require.Equal(t, "Bob", got.To)

	require.Equal(t, "hello all", carol.next(domain.FrameMsg).Body)
}

func TestHub_DirectMessageToUnknownIsDropped(t *testing.T) {
	_, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "a", "Alice")
	bob := join(t, addr, "b", "Bob")

	alice.send(domain.Frame{Type: domain.FrameMsg, To: "Zed", Body: "lost"})
	alice.send(domain.Frame{Type: domain.FrameMsg, Body: "after"})

	got := bob.next(domain.FrameMsg)
	require.Equal(t, "after", got.Body)
	require.Equal(t, "Alice", got.From, "hub fills in a missing sender")
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	_, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "a", "Alice")
	bob := join(t, addr, "b", "Bob")

	alice.send(domain.Frame{Type: domain.FrameImg, From: "a", Data: "aGk=", Name: "hi.png"})
	img := bob.next(domain.FrameImg)
	require.Equal(t, "hi.png", img.Name)

	// Anything the hub sent alice for her own img precedes bob's reply.
	bob.send(domain.Frame{Type: domain.FrameMsg, From: "b", To: "Alice", Body: "barrier"})
	skipped, _ := alice.until(body("barrier"))
	requireNoChat(t, skipped)
}

func TestHub_DirectMessageGoesToFirstPeerWithName(t *testing.T) {
	_, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "a", "Alice")
	bob1 := join(t, addr, "b1", "Bob")
	bob2 := join(t, addr, "b2", "Bob")

	alice.send(domain.Frame{Type: domain.FrameMsg, To: "Bob", Body: "x"})
	alice.send(domain.Frame{Type: domain.FrameMsg, Body: "barrier"})

	skipped, _ := bob1.until(body("x"))
	requireNoChat(t, skipped)
	_, got := bob1.until(func(f domain.Frame) bool { return f.IsChat() })
	require.Equal(t, "barrier", got.Body)

	skipped, _ = bob2.until(body("barrier"))
	requireNoChat(t, skipped)
}

func TestHub_DisconnectAnnouncesOffline(t *testing.T) {
	h, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "a", "Alice")
	bob := join(t, addr, "b", "Bob")
	alice.next(domain.FramePresence) // bob online

	require.NoError(t, bob.c.Close())

	off := alice.next(domain.FramePresence)
	require.Equal(t, domain.PresenceOffline, off.Event)
	require.Equal(t, "Bob", off.ID)
	require.Eventually(t, func() bool { return len(h.Roster()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RateLimitDropsExcessFrames(t *testing.T) {
	cfg := hub.DefaultConfig()
	cfg.MessageRate = 0.001
	cfg.MessageBurst = 1
	_, addr := startHub(t, cfg)

	alice := join(t, addr, "a", "Alice")
	bob := join(t, addr, "b", "Bob")

	alice.send(domain.Frame{Type: domain.FrameMsg, Body: "first"})
	alice.send(domain.Frame{Type: domain.FrameMsg, Body: "second"})
	require.Equal(t, "first", bob.next(domain.FrameMsg).Body)

	// presence_req is not rate limited and acts as a barrier on alice's stream.
	alice.send(domain.Frame{Type: domain.FramePresenceReq})
	alice.next(domain.FrameRoster)
	bob.send(domain.Frame{Type: domain.FrameMsg, To: "Bob", Body: "self"})
	require.Equal(t, "self", bob.next(domain.FrameMsg).Body)
}

func TestHub_Announce(t *testing.T) {
	h, addr := startHub(t, hub.DefaultConfig())

	alice := join(t, addr, "a", "Alice")
	h.Announce("maintenance at noon")

	got := alice.next(domain.FrameMsg)
	require.Equal(t, hub.AnnounceSender, got.From)
	require.Equal(t, "maintenance at noon", got.Body)
	require.NotZero(t, got.TS)
}

func TestHub_WebSocketPeer(t *testing.T) {
	h, addr := startHub(t, hub.DefaultConfig())
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	require.NoError(t, ws.WriteJSON(domain.Frame{Type: domain.FrameHello, ID: "w", Name: "Web"}))
	wsNext := func(typ domain.FrameType) domain.Frame {
		for {
			require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
			var f domain.Frame
			require.NoError(t, ws.ReadJSON(&f))
			if f.Type == typ {
				return f
			}
		}
	}
	wsNext(domain.FrameRoster)

	tcp := join(t, addr, "t", "Term")
	tcp.send(domain.Frame{Type: domain.FrameMsg, To: "Web", Body: "across transports"})
	require.Equal(t, "across transports", wsNext(domain.FrameMsg).Body)

	require.NoError(t, ws.WriteJSON(domain.Frame{Type: domain.FrameMsg, Body: "back"}))
	require.Equal(t, "back", tcp.next(domain.FrameMsg).Body)
}
