package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"persondir/api"
	"persondir/store"
)

// version is stamped at build time with -ldflags "-X persondir/cmd.version=...".
var version = "dev"

var (
	serveAddr  string
	serveWatch bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the directory over HTTP",
	Long: `Start the local HTTP API.

The API lists, adds and deletes people under /api and exposes /liveness,
/readiness and /metrics. With --watch the list is reloaded whenever the
storage file is changed by another process.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Address to listen on (default from config)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Reload when the storage file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveWatch {
		cfg.Cache.Watch = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Cache.Watch {
		w, err := watchStorage(ctx, a)
		if err != nil {
			return err
		}
		if w != nil {
			defer w.Close()
		}
	}

	// Warm the list so /readiness turns green without a request.
	a.dir.Initialize()

	srv := api.NewServer(&api.ServerOptions{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Std(),
	}, api.NewHandler(&api.HandlerOptions{
		Title:           "persondir",
		Version:         version,
		EndpointsPrefix: cfg.Server.EndpointsPrefix,
		Metrics:         a.metrics,
	}, a.dir, log), log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("could not shutdown the server", zap.Error(err))
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server closed")
	return nil
}

// watchStorage refetches a's directory whenever its storage file changes. It
// returns nil when the backend has no file to watch.
func watchStorage(ctx context.Context, a *app) (*store.Watcher, error) {
	path := store.WatchPath(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Key)
	if path == "" {
		log.Warn("nothing to watch", zap.String("backend", cfg.Storage.Backend))
		return nil, nil
	}
	return store.Watch(ctx, path, cfg.Cache.WatchDebounce.Std(), log, func() { a.dir.Refetch() })
}
