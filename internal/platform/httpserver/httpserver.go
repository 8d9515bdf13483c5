// Package httpserver builds the daemon's small operational HTTP surface:
// liveness, Prometheus scraping, and a debug endpoint for the last
// integrity report. There is no public ingest API over HTTP; events are
// captured in-process via pkg/audit.
package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"auditlog/pkg/audit/integrity"
)

// ReportSource supplies the most recently computed integrity report for
// the debug endpoint. *integrity.Monitor satisfies it through LastReport.
type ReportSource interface {
	LastReport() (integrity.Report, bool)
}

// New builds an HTTP server exposing /healthz, /metrics, and (when source
// is non-nil) /debug/integrity.
func New(addr string, source ReportSource) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if source != nil {
		r.Get("/debug/integrity", func(w http.ResponseWriter, req *http.Request) {
			report, ok := source.LastReport()
			if !ok {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("no integrity check has completed yet"))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(report)
		})
	}

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
