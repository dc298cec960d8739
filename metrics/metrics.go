// Package metrics exposes service counters in Prometheus text format.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	vmetrics "github.com/VictoriaMetrics/metrics"
)

// Operation counters. Registered once at package init; callers bump
// them through the helpers below.
var (
	auctionsStarted = vmetrics.NewCounter("auctions_started_total")
	auctionsSettled = vmetrics.NewCounter("auctions_settled_total")
	bidsAccepted    = vmetrics.NewCounter("bids_accepted_total")
	effectsExecuted = vmetrics.NewCounter("effect_legs_executed_total")
	effectsFailed   = vmetrics.NewCounter("effect_legs_failed_total")
)

// IncAuctionsStarted records a finalized admission.
func IncAuctionsStarted() { auctionsStarted.Inc() }

// IncAuctionsSettled records a completed settlement.
func IncAuctionsSettled() { auctionsSettled.Inc() }

// IncBidsAccepted records an admitted bid.
func IncBidsAccepted() { bidsAccepted.Inc() }

// IncEffectExecuted records one executed effect leg; failed marks legs
// whose outbound request errored.
func IncEffectExecuted(failed bool) {
	effectsExecuted.Inc()
	if failed {
		effectsFailed.Inc()
	}
}

// MetricsServer serves the metrics endpoint on its own listener so the
// scrape surface stays off the public API port.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the named service on addr. An empty
// addr yields a server whose ListenAndServe is a no-op, which lets
// callers treat metrics as optional.
func New(name, addr string) (*MetricsServer, error) {
	if addr == "" {
		return &MetricsServer{}, nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "# service: %s\n", name)
		vmetrics.WritePrometheus(w, true)
	})

	return &MetricsServer{
		srv: &http.Server{Addr: addr, Handler: mux},
	}, nil
}

// ListenAndServe blocks serving the metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	if m.srv == nil {
		return nil
	}
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.srv == nil {
		return nil
	}
	return m.srv.Shutdown(ctx)
}
