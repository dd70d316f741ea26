package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/vango-dev/elements/internal/config"
	"github.com/vango-dev/elements/internal/demo"
	"github.com/vango-dev/elements/internal/metrics"
	"github.com/vango-dev/elements/pkg/element"
	"github.com/vango-dev/elements/pkg/live"
)

func serveCmd(a *app) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo page as live sessions",
		Long: `Serve runs the demo page in client context on the server. Each browser
tab gets a session whose DOM changes are streamed as patches over a
WebSocket; clicks and input are sent back and dispatched server-side.

Routes:
  GET /                 the page (starts a session)
  GET /live             WebSocket endpoint
  GET /live/client.js   client script
  GET /metrics          Prometheus metrics

Examples:
  elements serve
  elements serve --port=8080 --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Server.Port = port
			}
			if host != "" {
				a.cfg.Server.Host = host
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a.cfg, a.logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}

// newHandler wires the live server and metrics into one router.
func newHandler(cfg *config.Config, logger *slog.Logger, m *metrics.Collector) (http.Handler, *live.Server, error) {
	reg := element.NewRegistry(false)
	if _, err := demo.Register(reg); err != nil {
		return nil, nil, err
	}

	lc := live.DefaultConfig()
	lc.Title = "elements"
	lc.Registry = reg
	lc.Observer = m
	lc.Logger = logger
	lc.ReadTimeout = cfg.Live.ReadTimeout
	lc.WriteTimeout = cfg.Live.WriteTimeout
	if lc.PingInterval >= lc.ReadTimeout {
		lc.PingInterval = lc.ReadTimeout * 9 / 10
	}
	srv := live.NewServer(demo.BuildPage, lc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(m.Instrument)
	r.Use(metrics.Trace("github.com/vango-dev/elements/cmd/elements"))
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Mount("/", srv.Routes())
	return r, srv, nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	m := metrics.New(metrics.WithRuntime())
	uninstall := m.Install()
	defer uninstall()

	handler, sessions, err := newHandler(cfg, logger, m)
	if err != nil {
		return err
	}
	defer sessions.Close()

	httpSrv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	success("Listening on http://%s", cfg.Address())
	info("metrics at http://%s/metrics", cfg.Address())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	info("shutting down (%d live sessions)", sessions.Count())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
