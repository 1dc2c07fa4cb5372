package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Measurements collects measurements for prometheus.
type Measurements struct {
	histograms map[string]prometheus.Observer
	gauge      map[string]prometheus.Gauge
}

// CreateUpdateObservableHistogtram creates or updates an observable histogram.
func (m *Measurements) CreateUpdateObservableHistogtram(name, description string) {
	if _, ok := m.histograms[name]; ok {
		return
	}
	hist := promauto.NewHistogram(prometheus.HistogramOpts{
		Name: name,
		Help: description,
	})

	m.histograms[name] = hist
}

// RecordHistogramTime records histogram time if an entity with the given name exists.
func (m *Measurements) RecordHistogramTime(name string, t time.Duration) bool {
	ts := float64(t.Microseconds())
	if v, ok := m.histograms[name]; ok {
		v.Observe(ts)
		return true
	}
	return false
}

// RecordHistogramValue records histogram value if an entity with the given name exists.
func (m *Measurements) RecordHistogramValue(name string, f float64) bool {
	if v, ok := m.histograms[name]; ok {
		v.Observe(f)
		return true
	}
	return false
}

// CreateUpdateObservableGauge creates or updates an observable gauge.
func (m *Measurements) CreateUpdateObservableGauge(name, description string) {
	if _, ok := m.gauge[name]; ok {
		return
	}
	gauge := promauto.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: description,
	})

	m.gauge[name] = gauge
}

// AddToGauge adds the value to the gauge if an entity with the given name exists.
func (m *Measurements) AddToGauge(name string, f float64) bool {
	if v, ok := m.gauge[name]; ok {
		v.Add(f)
		return true
	}
	return false
}

// IncrementGauge increments the gauge if an entity with the given name exists.
func (m *Measurements) IncrementGauge(name string) bool {
	if v, ok := m.gauge[name]; ok {
		v.Inc()
		return true
	}
	return false
}

// DecrementGauge decrements the gauge if an entity with the given name exists.
func (m *Measurements) DecrementGauge(name string) bool {
	if v, ok := m.gauge[name]; ok {
		v.Dec()
		return true
	}
	return false
}

// Run starts the server with the prometheus telemetry endpoint.
// Returns a Measurements structure if successfully started or cancels the
// context otherwise. The default port of 2112 is used if port is set to 0.
func Run(ctx context.Context, cancel context.CancelFunc, port int) (*Measurements, error) {
	if port > 65535 || port < 0 {
		return nil, fmt.Errorf("port range allowed is from 1 to 65535, received %d", port)
	}
	if port == 0 {
		port = 2112
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

		go func() {
			if err := srv.ListenAndServe(); err != nil {
				cancel()
			}
		}()

		<-ctx.Done()

		ctxx, cancelx := context.WithTimeout(context.Background(), time.Second*5)
		defer cancelx()
		srv.Shutdown(ctxx)
	}()

	return &Measurements{
		histograms: make(map[string]prometheus.Observer),
		gauge:      make(map[string]prometheus.Gauge),
	}, nil
}
