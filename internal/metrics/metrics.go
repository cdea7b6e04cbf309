// Package metrics instruments the protocol bridge with prometheus
// counters and optionally serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pkt.systems/pslog"
)

// Bridge counts protocol bridge activity.
type Bridge struct {
	registry *prometheus.Registry

	FramesTotal    prometheus.Counter
	ResponsesTotal *prometheus.CounterVec
	WriteFailures  prometheus.Counter
}

// NewBridge builds the bridge counters on a private registry.
func NewBridge() *Bridge {
	registry := prometheus.NewRegistry()
	b := &Bridge{
		registry: registry,
		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "toodle",
			Subsystem: "bridge",
			Name:      "frames_total",
			Help:      "Frames read from the input stream.",
		}),
		ResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toodle",
			Subsystem: "bridge",
			Name:      "responses_total",
			Help:      "Responses written, by variant tag.",
		}, []string{"type"}),
		WriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "toodle",
			Subsystem: "bridge",
			Name:      "write_failures_total",
			Help:      "Response frames that could not be written.",
		}),
	}
	registry.MustRegister(b.FramesTotal, b.ResponsesTotal, b.WriteFailures)
	return b
}

// FrameRead records one frame read attempt that produced a body.
func (b *Bridge) FrameRead() {
	if b == nil {
		return
	}
	b.FramesTotal.Inc()
}

// ResponseWritten records a response by its variant tag.
func (b *Bridge) ResponseWritten(tag string) {
	if b == nil {
		return
	}
	b.ResponsesTotal.WithLabelValues(tag).Inc()
}

// WriteFailed records a failed response write.
func (b *Bridge) WriteFailed() {
	if b == nil {
		return
	}
	b.WriteFailures.Inc()
}

// Serve exposes the counters at /metrics on addr until ctx is canceled.
func (b *Bridge) Serve(ctx context.Context, addr string, logger pslog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if logger != nil {
		logger.Info("metrics listener start", "addr", addr)
	}
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
