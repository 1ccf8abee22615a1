package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/san-kum/flipsim/internal/config"
	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/san-kum/flipsim/internal/sim"
	"github.com/san-kum/flipsim/internal/stream"
	"github.com/spf13/cobra"
)

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub(withParticles)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "flipsim: resolution %d, %d fps, connect to /ws\n", cfg.Scene.Resolution, cfg.FPS)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return runServer(ctx, cfg, srv, hub)
}

// runServer serves srv and streams frames to hub until ctx is cancelled or
// the listener fails. A listener error stops the stream and is returned.
func runServer(parent context.Context, cfg *config.Config, srv *http.Server, hub *stream.Hub) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	var listenErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr = fmt.Errorf("listen on %s: %w", srv.Addr, err)
			cancel(listenErr)
		}
	}()

	simErr := streamFrames(ctx, cfg, hub)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown", "err", err)
	}
	<-done

	if listenErr != nil {
		return listenErr
	}
	if errors.Is(simErr, dynamo.ErrContextCanceled) {
		return nil
	}
	return simErr
}

// streamFrames runs the scene at the configured frame rate, restarting it
// each time cfg.Frames frames have been played, until ctx is cancelled.
func streamFrames(ctx context.Context, cfg *config.Config, hub *stream.Hub) error {
	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()

	for loop := 0; ; loop++ {
		sys, err := cfg.NewSimulator()
		if err != nil {
			return err
		}
		runner := sim.New(sys, cfg.Params())
		slog.Debug("scene started", "loop", loop, "particles", sys.NumParticles())

		err = runner.RunWithCallback(ctx, cfg.RunConfig(), func(stats dynamo.FrameStats) bool {
			hub.OnStep(sys, stats)
			select {
			case <-ctx.Done():
				return false
			case <-ticker.C:
				return true
			}
		})
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		}
	}
}
