package exporter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrapeHandler serves registry. Families that fail to gather are logged and
// left out; the remaining families are still served.
func scrapeHandler(registry *prometheus.Registry, internalMetricsEnabled bool) http.Handler {
	var handler http.Handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	})

	if internalMetricsEnabled {
		handler = promhttp.InstrumentMetricHandler(registry, handler)
		slog.Info("enabled prometheus internal metrics",
			"metrics", []string{
				"promhttp_metric_handler_requests_total",
				"promhttp_metric_handler_requests_in_flight",
				"go_*",
				"process_*",
			})
	}

	return handler
}

// createHTTPServer creates the scrape server with path routed to handler.
func createHTTPServer(addr, path string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("prometheus scrape", "remote", r.RemoteAddr, "path", r.URL.Path)
		handler.ServeHTTP(w, r)
	}))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
