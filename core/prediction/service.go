package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/pilgrimcast/core/features"
	"github.com/kilianp07/pilgrimcast/core/logger"
	"github.com/kilianp07/pilgrimcast/core/metrics"
	"github.com/kilianp07/pilgrimcast/core/model"
	"github.com/kilianp07/pilgrimcast/core/monitoring"
	"github.com/kilianp07/pilgrimcast/core/rules"
)

// EventPublisher receives a copy of every prediction event. Implementations
// must not block.
type EventPublisher interface {
	Publish(ev metrics.PredictionEvent)
}

// Options configures a Service. Model and Schema are required.
type Options struct {
	Model     Regressor
	Schema    features.Schema
	Encoders  features.Encoders
	Processor *PostProcessor
	Policy    model.MetadataPolicy
	Sink      metrics.MetricsSink
	Events    EventPublisher
	Logger    logger.Logger
}

// Service orchestrates one prediction request from raw payload to response.
// It holds only read-only state after construction and is safe for
// concurrent use.
type Service struct {
	model     Regressor
	schema    features.Schema
	encoders  features.Encoders
	processor *PostProcessor
	policy    model.MetadataPolicy
	sink      metrics.MetricsSink
	events    EventPublisher
	log       logger.Logger
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Model == nil {
		return nil, errors.New("prediction: model is required")
	}
	if opts.Schema.Len() == 0 {
		return nil, errors.New("prediction: feature schema is required")
	}
	if opts.Policy == "" {
		opts.Policy = model.PolicyStrict
	}
	if !opts.Policy.Valid() {
		return nil, fmt.Errorf("prediction: unknown metadata policy %q", opts.Policy)
	}
	if opts.Processor == nil {
		opts.Processor = NewPostProcessor(nil, 0)
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Service{
		model:     opts.Model,
		schema:    opts.Schema,
		encoders:  opts.Encoders,
		processor: opts.Processor,
		policy:    opts.Policy,
		sink:      opts.Sink,
		events:    opts.Events,
		log:       opts.Logger,
	}, nil
}

// Predict runs the full pipeline for payload. It never panics and never
// returns an error: failures are reported in the response envelope.
func (s *Service) Predict(ctx context.Context, payload map[string]any) (resp model.Response) {
	start := time.Now()
	ev := metrics.PredictionEvent{ID: uuid.NewString(), Time: start.UTC(), Input: payload}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			monitoring.CaptureException(err, monitoring.Tags("prediction", "request_id", ev.ID))
			resp = s.fail(&ev, err)
		}
		ev.Latency = time.Since(start)
		s.emit(ev)
	}()

	res, err := s.run(ctx, payload, &ev)
	if err != nil {
		return s.fail(&ev, err)
	}
	ev.Status = model.StatusSuccess
	ev.Result = &res
	s.log.Infow("prediction served", map[string]any{
		"request_id":  ev.ID,
		"raw":         res.RawPrediction,
		"visitors":    res.PredictedVisitors,
		"crowd_level": res.CrowdLevel.String(),
		"rules":       res.RulesApplied,
	})
	return model.Success(res)
}

func (s *Service) run(ctx context.Context, payload map[string]any, ev *metrics.PredictionEvent) (model.ProcessedResult, error) {
	meta, err := model.ParseMetadata(payload)
	if err != nil {
		if s.policy != model.PolicyPermissive {
			return model.ProcessedResult{}, err
		}
		s.log.Warnf("request %s: metadata defaulted: %v", ev.ID, err)
	}
	ev.Metadata = meta

	vec, missing, err := s.schema.Align(s.encoders.Enrich(payload))
	if err != nil {
		return model.ProcessedResult{}, err
	}
	ev.MissingColumns = missing
	if len(missing) > 0 {
		s.log.Debugw("feature columns filled with zero", map[string]any{
			"request_id": ev.ID,
			"missing":    len(missing),
			"columns":    missing,
		})
	}

	raw, err := s.model.Predict(ctx, vec)
	if err != nil {
		err = fmt.Errorf("%w: %w", model.ErrModelInvocation, err)
		monitoring.CaptureException(err, monitoring.Tags("prediction", "request_id", ev.ID))
		return model.ProcessedResult{}, err
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return model.ProcessedResult{}, fmt.Errorf("%w: non-finite prediction %v", model.ErrModelInvocation, raw)
	}
	if math.Abs(raw) > rules.MaximumVisitors {
		return model.ProcessedResult{}, fmt.Errorf("%w: prediction %v out of range", model.ErrModelInvocation, raw)
	}
	ev.RawValue = raw
	return s.processor.Process(raw, meta), nil
}

func (s *Service) fail(ev *metrics.PredictionEvent, err error) model.Response {
	ev.Status = model.StatusError
	ev.Error = err.Error()
	ev.ErrorKind = model.ErrorKind(err)
	ev.Result = nil
	s.log.Warnf("request %s failed (%s): %v", ev.ID, ev.ErrorKind, err)
	return model.Failure(err)
}

func (s *Service) emit(ev metrics.PredictionEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("record prediction %s: panic: %v", ev.ID, r)
		}
	}()
	if err := s.sink.RecordPrediction(ev); err != nil {
		s.log.Errorf("record prediction %s: %v", ev.ID, err)
	}
	if s.events != nil {
		s.events.Publish(ev)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
