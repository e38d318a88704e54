package inspector

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arenapilot/arenapilot/internal/scenario"
	"go.uber.org/zap"
)

// Play runs r one step per delay while the hub streams every notification,
// a snapshot after each step and a summary at the end. A failing step is
// published as an error frame and returned.
func Play(ctx context.Context, hub *Hub, r *scenario.Runner, delay time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := r.Engine()
	detach := hub.Attach(engine)
	defer detach()

	hub.PublishSnapshot(engine, "start")

	var tick <-chan time.Time
	if delay > 0 {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		tick = ticker.C
	}

	for step := 1; !r.Done(); step++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		err := r.Next()
		hub.PublishSnapshot(engine, "step")
		if err != nil {
			logger.Warn("scenario step failed", zap.Int("step", step), zap.Error(err))
			hub.Publish(Message{Type: TypeError, GameID: engine.ID(), Data: err.Error()})
			return err
		}
	}

	summary := r.Summary()
	hub.Publish(Message{Type: TypeSummary, GameID: engine.ID(), Data: summary})
	logger.Info("scenario played",
		zap.Int("steps", summary.Steps),
		zap.String("checksum", summary.Checksum),
	)
	return nil
}

// Handler serves the websocket at /ws, the latest snapshot at /snapshot and
// a liveness probe at /healthz.
func Handler(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		latest := hub.Latest()
		if latest == nil {
			http.Error(w, "no snapshot yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(latest)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Serve listens on addr until ctx is done, then shuts down gracefully and
// returns nil.
func Serve(ctx context.Context, addr string, hub *Hub, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("inspector listening", zap.String("address", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("inspector stopped")
		return nil
	}
}
