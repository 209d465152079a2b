package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

// Exporter serves the metrics registry over HTTP
type Exporter struct {
	addr     string
	registry *prometheus.Registry
	server   *http.Server
	listener net.Listener
	logger   *zap.Logger
}

// NewRegistry creates a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// NewExporter creates an exporter for registry listening on addr
func NewExporter(addr string, registry *prometheus.Registry, logger *zap.Logger) *Exporter {
	return &Exporter{
		addr:     addr,
		registry: registry,
		logger:   logger,
	}
}

// Start begins serving /metrics and /health in the background
func (e *Exporter) Start() error {
	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return err
	}
	e.listener = ln

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	e.logger.Info("Metrics exporter starting", zap.String("address", ln.Addr().String()))
	go func() {
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("Metrics exporter error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (e *Exporter) Addr() string {
	if e.listener == nil {
		return e.addr
	}
	return e.listener.Addr().String()
}

// Stop shuts the HTTP server down
func (e *Exporter) Stop(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}
