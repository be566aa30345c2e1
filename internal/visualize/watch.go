package visualize

import (
	"context"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

// Watch polls path for modification-time changes and calls recompile (which
// should return a fresh Graphviz dump) each time it changes, broadcasting
// the result to s's clients, while concurrently serving s over addr. It
// runs until ctx is cancelled or either goroutine errors.
func Watch(ctx context.Context, s *Server, addr, path string, interval time.Duration, recompile func() (string, error)) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		errCh := make(chan error, 1)
		go func() { errCh <- httpServer.ListenAndServe() }()
		select {
		case <-ctx.Done():
			return httpServer.Close()
		case err := <-errCh:
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		}
	})

	g.Go(func() error {
		var lastMod time.Time
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue
				}
				if info.ModTime().Equal(lastMod) {
					continue
				}
				lastMod = info.ModTime()
				dot, err := recompile()
				if err != nil {
					s.logger.Warn("visualize: recompile failed", "error", err)
					continue
				}
				s.Broadcast(dot)
			}
		}
	})

	return g.Wait()
}
