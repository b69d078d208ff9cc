package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/kilianp07/pilgrimcast/api/predict"
	"github.com/kilianp07/pilgrimcast/api/predictions"
	"github.com/kilianp07/pilgrimcast/config"
	"github.com/kilianp07/pilgrimcast/core/audit"
	coremetrics "github.com/kilianp07/pilgrimcast/core/metrics"
	coremon "github.com/kilianp07/pilgrimcast/core/monitoring"
	"github.com/kilianp07/pilgrimcast/core/prediction"
	"github.com/kilianp07/pilgrimcast/core/rules"
	"github.com/kilianp07/pilgrimcast/infra/artifacts"
	"github.com/kilianp07/pilgrimcast/infra/logger"
	"github.com/kilianp07/pilgrimcast/infra/metrics"
	"github.com/kilianp07/pilgrimcast/infra/monitoring"
	"github.com/kilianp07/pilgrimcast/infra/mqtt"
	_ "github.com/kilianp07/pilgrimcast/infra/regressor"
	"github.com/kilianp07/pilgrimcast/internal/eventbus"
)

// Version is reported by GET /.
const Version = "1.0.0"

// recorderDrainTimeout bounds how long Close waits for buffered audit events.
const recorderDrainTimeout = 5 * time.Second

// mqttClient is the part of the MQTT client used by the service.
type mqttClient interface {
	mqtt.Publisher
	Serve(ctx context.Context, h mqtt.RequestHandler) error
	Disconnect()
}

var newMQTTClient = func(cfg mqtt.Config) (mqttClient, error) {
	return mqtt.NewPahoClient(cfg)
}

// Service wires the prediction pipeline to its HTTP, MQTT and audit surfaces.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	Predictor *prediction.Service
	sink      coremetrics.MetricsSink
	bus       *eventbus.TypedBus[coremetrics.PredictionEvent]
	store     audit.Store
	recorder  *audit.Recorder
	mqtt      mqttClient
	handler   http.Handler

	mu   sync.Mutex
	addr net.Addr
}

// New creates a Service from the configuration. Artifact failures are fatal.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	arts, err := artifacts.Load(cfg.Artifacts, logger.New("artifacts"))
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}

	sink, err := newSink(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	svc := &Service{cfg: cfg, log: logg, sink: sink, bus: eventbus.NewTypedWithBuffer[coremetrics.PredictionEvent](cfg.Audit.Buffer)}
	if cfg.MQTT.Enabled() {
		client, err := newMQTTClient(cfg.MQTT)
		if err != nil {
			if cerr := svc.closeOutputs(); cerr != nil {
				logg.Warnf("close metrics sink: %v", cerr)
			}
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
		sink = appendSink(sink, mqtt.NewPredictionSink(client, cfg.MQTT.Topic))
	}
	svc.sink = sink

	store, err := audit.NewStore(context.Background(), cfg.Audit)
	if err != nil {
		svc.closeOutputs()
		return nil, fmt.Errorf("audit store: %w", err)
	}
	svc.store = store
	if store != nil {
		// The recorder outlives Run so one-shot predictions are audited too;
		// Close stops it by closing the bus.
		svc.recorder = audit.StartRecorder(context.Background(), svc.bus, store, logger.New("audit"))
	}

	svc.Predictor, err = prediction.NewService(prediction.Options{
		Model:     arts.Model,
		Schema:    arts.Schema,
		Encoders:  arts.Encoders,
		Processor: prediction.NewPostProcessor(rules.New(rules.DefaultRules(cfg.Rules)...), cfg.Prediction.Spread),
		Policy:    cfg.Prediction.MetadataPolicy,
		Sink:      sink,
		Events:    svc.bus,
		Logger:    logger.New("prediction"),
	})
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	mux := predict.NewRouter(svc.Predictor, predict.Info{
		Message: "Pilgrimage visitor prediction service is running",
		Version: Version,
		Model:   modelName(cfg.Artifacts),
	})
	mux.Handle("/api/predictions/logs", predictions.NewLogHandler(store, cfg.Server.LogToken))
	svc.handler = mux
	return svc, nil
}

func newSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return sink, nil
}

func appendSink(base, extra coremetrics.MetricsSink) coremetrics.MetricsSink {
	if _, ok := base.(coremetrics.NopSink); ok {
		return extra
	}
	return coremetrics.NewMultiSink(base, extra)
}

func modelName(cfg artifacts.Config) string {
	if cfg.Model.Type != "" {
		return cfg.Model.Type
	}
	return filepath.Base(cfg.ModelPath)
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler { return s.handler }

// Addr returns the bound HTTP address once Run is listening.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.mqtt != nil && s.cfg.MQTT.RequestTopic != "" {
		if err := s.mqtt.Serve(ctx, s.Predictor.Predict); err != nil {
			return fmt.Errorf("mqtt serve: %w", err)
		}
		s.log.Infof("serving predictions on mqtt topic %s", s.cfg.MQTT.RequestTopic)
	}

	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Infof("listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service. Buffered audit events are
// written before the store is closed.
func (s *Service) Close() error {
	s.bus.Close()
	if s.recorder != nil && !s.recorder.Wait(recorderDrainTimeout) {
		s.log.Warnf("audit recorder still busy after %s, closing store", recorderDrainTimeout)
	}
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("audit recorder fell behind, %d prediction events were not recorded", n)
	}
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	errs = append(errs, s.closeOutputs())
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}

func (s *Service) closeOutputs() error {
	var errs []error
	if multi, ok := s.sink.(*coremetrics.MultiSink); ok {
		for _, sk := range multi.Sinks {
			errs = append(errs, closeSink(sk))
		}
	} else {
		errs = append(errs, closeSink(s.sink))
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	return errors.Join(errs...)
}

func closeSink(sk coremetrics.MetricsSink) error {
	if c, ok := sk.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
