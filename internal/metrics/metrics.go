// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/audcap/formats/adts"
)

// Metrics contains the Prometheus collectors of one audcap process. It
// implements audcap.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// Input
	ChunksRead prometheus.Counter
	InputBytes prometheus.Counter

	// Reassembly
	FramesEmitted prometheus.Counter

	// Framed records
	RecordsWritten prometheus.Counter
	RecordsRead    prometheus.Counter
	PayloadBytes   *prometheus.CounterVec
	RecordsDropped prometheus.Counter
	PayloadSize    prometheus.Histogram
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		ChunksRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audcap_chunks_read_total",
			Help: "Total number of raw chunks read from the input",
		}),
		InputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audcap_input_bytes_total",
			Help: "Total number of raw bytes read from the input",
		}),
		FramesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audcap_frames_emitted_total",
			Help: "Total number of fixed-size frames produced by reassembly",
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audcap_adts_records_written_total",
			Help: "Total number of ADTS records written",
		}),
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audcap_adts_records_read_total",
			Help: "Total number of ADTS records read",
		}),
		PayloadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audcap_adts_payload_bytes_total",
			Help: "Total number of ADTS payload bytes by direction",
		}, []string{"direction"}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audcap_adts_records_dropped_total",
			Help: "Total number of records skipped or rejected",
		}),
		PayloadSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "audcap_adts_payload_size_bytes",
			Help:    "Size of ADTS record payloads",
			Buckets: prometheus.ExponentialBuckets(64, 2, 8), // 64B to 8KB
		}),
	}

	reg.MustRegister(
		m.ChunksRead,
		m.InputBytes,
		m.FramesEmitted,
		m.RecordsWritten,
		m.RecordsRead,
		m.PayloadBytes,
		m.RecordsDropped,
		m.PayloadSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RegisterOverruns exposes a capture overrun count read on every scrape.
func (m *Metrics) RegisterOverruns(overruns func() uint64) error {
	return m.registry.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "audcap_capture_overruns_total",
		Help: "Total number of capture chunks dropped because the reader fell behind",
	}, func() float64 { return float64(overruns()) }))
}

func (m *Metrics) ChunkRead(bytes int) {
	m.ChunksRead.Inc()
	m.InputBytes.Add(float64(bytes))
}

func (m *Metrics) FrameEmitted(int) {
	m.FramesEmitted.Inc()
}

func (m *Metrics) RecordWritten(h adts.Header) {
	m.RecordsWritten.Inc()
	m.PayloadBytes.WithLabelValues("out").Add(float64(h.PayloadLength))
	m.PayloadSize.Observe(float64(h.PayloadLength))
}

func (m *Metrics) RecordRead(h adts.Header) {
	m.RecordsRead.Inc()
	m.PayloadBytes.WithLabelValues("in").Add(float64(h.PayloadLength))
	m.PayloadSize.Observe(float64(h.PayloadLength))
}

func (m *Metrics) RecordDropped(error) {
	m.RecordsDropped.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", "address", addr)
		errCh <- server.ListenAndServe()
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
		return server.Shutdown(shutdownCtx)
	}
}
