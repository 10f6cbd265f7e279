// Package metrics exposes frame loop and asset loading telemetry in the
// Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/frame"
)

const namespace = "snowglobe"

// Metrics owns a private registry so that several instances (tests, one per
// server) never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	frameSeconds *prometheus.HistogramVec
	frames       *prometheus.CounterVec
	nodes        *prometheus.GaugeVec
	failures     *prometheus.CounterVec
	loadFailures *prometheus.CounterVec
	viewers      prometheus.Gauge
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frameSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_duration_seconds",
				Help:      "Time spent updating and rendering one frame",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .016, .033, .05, .1},
			},
			[]string{"scene"},
		),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of frames completed",
			},
			[]string{"scene"},
		),
		nodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scene_nodes",
				Help:      "Nodes visited by the most recent frame",
			},
			[]string{"scene"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frame_failures_total",
				Help:      "Recovered failures inside frames",
			},
			[]string{"scene", "stage"},
		),
		loadFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asset_load_failures_total",
				Help:      "Asset loads that did not complete",
			},
			[]string{"scene", "model"},
		),
		viewers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_viewers",
				Help:      "Scenes currently being viewed",
			},
		),
	}

	m.registry.MustRegister(
		m.frameSeconds, m.frames, m.nodes, m.failures, m.loadFailures, m.viewers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ViewerStarted and ViewerEnded track the active viewers gauge.
func (m *Metrics) ViewerStarted() { m.viewers.Inc() }
func (m *Metrics) ViewerEnded()   { m.viewers.Dec() }

// Scene returns an observer recording under the given scene label.
func (m *Metrics) Scene(id string) *SceneObserver {
	return &SceneObserver{
		m:        m,
		scene:    id,
		duration: m.frameSeconds.WithLabelValues(id),
		frames:   m.frames.WithLabelValues(id),
		nodes:    m.nodes.WithLabelValues(id),
	}
}

// SceneObserver implements frame.Observer for one scene and doubles as an
// asset error hook.
type SceneObserver struct {
	m        *Metrics
	scene    string
	duration prometheus.Observer
	frames   prometheus.Counter
	nodes    prometheus.Gauge
}

var _ frame.Observer = (*SceneObserver)(nil)

// FrameRendered implements frame.Observer.
func (o *SceneObserver) FrameRendered(elapsed time.Duration, nodes int) {
	o.duration.Observe(elapsed.Seconds())
	o.frames.Inc()
	o.nodes.Set(float64(nodes))
}

// FrameFailed implements frame.Observer.
func (o *SceneObserver) FrameFailed(err *frame.FrameError) {
	o.m.failures.WithLabelValues(o.scene, string(err.Stage)).Inc()
}

// LoadFailed has the signature of an asset.Manager error hook.
func (o *SceneObserver) LoadFailed(err *asset.LoadError) {
	o.m.loadFailures.WithLabelValues(o.scene, err.ID).Inc()
}

// Handler returns a router serving /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}

// Serve listens on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("metrics server stopped")
		return nil
	}
}
