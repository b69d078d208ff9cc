package metrics

import (
	coremetrics "github.com/kilianp07/pilgrimcast/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records prediction events in Prometheus metrics.
type PromSink struct {
	requests *prometheus.CounterVec
	rules    *prometheus.CounterVec
	missing  prometheus.Counter
	visitors prometheus.Histogram
	latency  *prometheus.HistogramVec
}

// NewPromSink registers prediction metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_requests_total",
		Help: "Total number of prediction requests",
	}, []string{"status", "crowd_level", "error_kind"})
	rules := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_rules_applied_total",
		Help: "Number of times each business rule fired",
	}, []string{"rule"})
	missing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prediction_missing_features_total",
		Help: "Feature columns filled with zero because the request omitted them",
	})
	visitors := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_visitors",
		Help:    "Distribution of final predicted visitor counts",
		Buckets: []float64{50, 100, 300, 500, 1000, 2000, 5000, 8000, 12000, 20000},
	})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prediction_latency_seconds",
		Help:    "Time spent handling a prediction request",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if rules, err = register(reg, rules); err != nil {
		return nil, err
	}
	if missing, err = register(reg, missing); err != nil {
		return nil, err
	}
	if visitors, err = register(reg, visitors); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	return &PromSink{requests: requests, rules: rules, missing: missing, visitors: visitors, latency: latency}, nil
}

// register returns the already registered collector when c was registered
// before, so several sinks can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction updates the counters and histograms for ev.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	level := ""
	if ev.Result != nil {
		level = ev.Result.CrowdLevel.String()
		s.visitors.Observe(float64(ev.Result.PredictedVisitors))
		for _, r := range ev.Result.RulesApplied {
			s.rules.WithLabelValues(r).Inc()
		}
	}
	s.requests.WithLabelValues(ev.Status, level, ev.ErrorKind).Inc()
	s.missing.Add(float64(len(ev.MissingColumns)))
	s.latency.WithLabelValues(ev.Status).Observe(ev.Latency.Seconds())
	return nil
}
