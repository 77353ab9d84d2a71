package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"energymix/internal/api"
	"energymix/internal/catalogue"
	"energymix/internal/engine"
	"energymix/internal/observability"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query catalogue over HTTP",
		Long: `Start the JSON API. The server answers immediately and returns 503 until
the dataset has loaded in the background. SIGHUP reloads the dataset and swaps
in the new snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.cfg.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			return serve(cmd.Context(), rootOpts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	log := opts.log
	cfg := opts.cfg

	cat, err := catalogue.Default()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// The API is live before data exists; it answers 503 until SetData.
	h := api.NewHandler(&engine.Snapshot{}, cat, observability.NewMetrics(), log)
	h.SetStrict(cfg.Engine.StrictClassification)
	h.RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &reloader{load: opts.loadStore, publish: h.SetData, log: log}
	reload := func() { r.reload(ctx) }
	go reload()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				log.Info("reload requested")
				reload()
			case <-ctx.Done():
				return
			}
		}
	}()

	errc := make(chan error, 1)
	go func() {
		log.Info("server ready (data loading in background)", "addr", cfg.Server.Addr())
		errc <- e.Start(cfg.Server.Addr())
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

// reloader loads and publishes snapshots one at a time, so a slow load can
// never publish over a snapshot that was requested after it.
type reloader struct {
	mu      sync.Mutex
	load    func(context.Context) (*engine.Store, error)
	publish func(*engine.Store)
	log     *slog.Logger
}

func (r *reloader) reload(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load(ctx)
	if err != nil {
		r.log.Error("load failed", "error", err)
		return
	}
	r.publish(store)
	r.log.Info("snapshot published", "rows", store.Len())
}
