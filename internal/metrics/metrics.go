// Package metrics holds the engine's Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Operations counts engine operations.
	// Labels:
	//   - op: "follow", "like", "append", ...
	//   - outcome: "ok" or the error kind
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wandermatch_operations_total",
			Help: "Social engine operations by outcome",
		},
		[]string{"op", "outcome"},
	)

	// MatchEvents counts match creations and removals.
	MatchEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wandermatch_match_events_total",
			Help: "Match records created or removed",
		},
		[]string{"type"},
	)

	// MessagesAppended counts chat messages by message_type.
	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wandermatch_messages_appended_total",
			Help: "Chat messages appended by type",
		},
		[]string{"type"},
	)

	// MilestonesDelivered counts twenty-day system messages.
	// Labels:
	//   - trigger: "read" (lazy check on list) or "sweep"
	MilestonesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wandermatch_milestones_delivered_total",
			Help: "Twenty-day milestone messages delivered",
		},
		[]string{"trigger"},
	)

	// RPCDuration measures gRPC handler latency.
	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wandermatch_rpc_duration_seconds",
			Help:    "gRPC handler duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "code"},
	)
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
