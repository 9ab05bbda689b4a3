package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"rechat/internal/hub"
)

// ServeHub serves h on ln, plus its HTTP API on Config.HTTPListen when set,
// until ctx ends or either listener fails. The hub is closed on return.
func (w *Wire) ServeHub(ctx context.Context, h *hub.Hub, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.Serve(ctx, ln) })

	if addr := w.Config.HTTPListen; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           h.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			w.Log.Info().Str("addr", addr).Msg("hub http listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return h.Close()
	})
	return g.Wait()
}
