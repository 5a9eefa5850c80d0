package telemetry

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

var gaugeSpecs = map[Signal]prometheus.GaugeOpts{
	SignalBatteryLevel: {
		Namespace: "devicectl",
		Name:      "battery_level_percent",
		Help:      "Battery charge in percent, NaN when the device reports none.",
	},
	SignalBatteryState: {
		Namespace: "devicectl",
		Name:      "battery_state",
		Help:      "Battery state: 0 none, 1 unplugged, 2 charging, 3 full.",
	},
	SignalLowPower: {
		Namespace: "devicectl",
		Name:      "low_power_mode",
		Help:      "1 when low power mode is enabled.",
	},
	SignalBrightness: {
		Namespace: "devicectl",
		Name:      "screen_brightness_percent",
		Help:      "Screen brightness in percent.",
	},
	SignalThermal: {
		Namespace: "devicectl",
		Name:      "thermal_state",
		Help:      "Thermal state: 0 nominal, 1 fair, 2 serious, 3 critical.",
	},
}

// PrometheusSink mirrors the latest update of each signal into gauges and
// serves them, together with a JSON view of the raw updates, over HTTP.
type PrometheusSink struct {
	cfg      PrometheusConfig
	registry *prometheus.Registry
	gauges   map[Signal]prometheus.Gauge
	router   *mux.Router
	log      logger.Logger

	mu     sync.RWMutex
	latest map[Signal]Update
	server *http.Server
}

func NewPrometheusSink(cfg PrometheusConfig, log logger.Logger) *PrometheusSink {
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}

	p := &PrometheusSink{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		gauges:   make(map[Signal]prometheus.Gauge, len(gaugeSpecs)),
		log:      log,
		latest:   make(map[Signal]Update, len(gaugeSpecs)),
	}

	for _, signal := range Signals {
		g := prometheus.NewGauge(gaugeSpecs[signal])
		if signal == SignalBatteryLevel {
			g.Set(math.NaN())
		}
		p.registry.MustRegister(g)
		p.gauges[signal] = g
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/state", p.handleState).Methods(http.MethodGet)
	r.HandleFunc("/state/{signal}", p.handleSignal).Methods(http.MethodGet)
	p.router = r

	return p
}

// Handler exposes the router for embedding or tests.
func (p *PrometheusSink) Handler() http.Handler {
	return p.router
}

// Start binds the listen address and serves in the background. Bind errors
// are returned; later serve errors are logged.
func (p *PrometheusSink) Start() error {
	errFactory := errors.New()

	ln, err := net.Listen("tcp", p.cfg.Listen)
	if err != nil {
		return errFactory.Wrap(ErrListenFailed, err).WithData(p.cfg.Listen)
	}

	srv := &http.Server{
		Handler:           p.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	p.mu.Lock()
	p.server = srv
	p.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	p.log.Info().Str("listen", ln.Addr().String()).Msg("Serving Prometheus metrics")

	return nil
}

func (p *PrometheusSink) Publish(_ context.Context, update Update) error {
	g, ok := p.gauges[update.Signal]
	if !ok {
		return errors.New().WithData(ErrPublishFailed, string(update.Signal))
	}

	if update.Available {
		g.Set(float64(update.Value))
	} else {
		g.Set(math.NaN())
	}

	p.mu.Lock()
	p.latest[update.Signal] = update
	p.mu.Unlock()

	return nil
}

// Close shuts the HTTP server down if it was started.
func (p *PrometheusSink) Close() error {
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return errors.New().Wrap(ErrServiceShutdown, err)
	}
	return nil
}

func (p *PrometheusSink) handleState(w http.ResponseWriter, _ *http.Request) {
	p.mu.RLock()
	updates := make([]Update, 0, len(p.latest))
	for _, signal := range Signals {
		if u, ok := p.latest[signal]; ok {
			updates = append(updates, u)
		}
	}
	p.mu.RUnlock()

	writeJSON(w, http.StatusOK, updates)
}

func (p *PrometheusSink) handleSignal(w http.ResponseWriter, r *http.Request) {
	signal := Signal(mux.Vars(r)["signal"])

	p.mu.RLock()
	u, ok := p.latest[signal]
	p.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
