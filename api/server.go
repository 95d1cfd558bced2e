package api

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"

	"persondir/directory"
)

type ServerOptions struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

func NewServer(options *ServerOptions, handler http.Handler, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Addr,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}
}

type HandlerOptions struct {
	Title           string
	Version         string
	EndpointsPrefix string
	// Metrics is the set the directory writes to; it is exposed on /metrics
	// together with the HTTP series and process metrics.
	Metrics *metrics.Set
}

// NewHandler serves d over HTTP.
func NewHandler(options *HandlerOptions, d *directory.Directory, logger *zap.Logger) http.Handler {
	buildinfoMetric := joinQuote("build_info{goversion=", runtime.Version(),
		",title=", options.Title,
		",version=", options.Version,
		"} 1\n")
	requests := metrics.NewSet()
	logger = logger.Named("api")

	return NewRouter(options.Title, options.Version, options.EndpointsPrefix,
		readiness(d),
		func(w io.Writer) {
			fmt.Fprint(w, buildinfoMetric)
			requests.WritePrometheus(w)
			if options.Metrics != nil {
				options.Metrics.WritePrometheus(w)
			}
			metrics.WriteProcessMetrics(w)
		},
		OptUseMiddleware(
			ctxlog{}.loggerMiddleware(logger),
			meterRequests(requests),
			ctxlog{}.recoverMiddleware(logger),
		),
		(&People{
			Directory:    d,
			ErrorHandler: ctxlog{}.errorHandler(logger),
		}).Register,
	)
}

// readiness answers 200 once the directory finished its first load and
// kicks that load off otherwise.
func readiness(d *directory.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-d.Initialize().Done():
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
}
