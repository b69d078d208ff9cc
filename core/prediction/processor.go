package prediction

import (
	"math"

	"github.com/kilianp07/pilgrimcast/core/model"
	"github.com/kilianp07/pilgrimcast/core/rules"
)

// PostProcessor threads a raw prediction through the rule engine, the
// confidence band and the crowd classifier.
type PostProcessor struct {
	engine *rules.Engine
	spread float64
}

// NewPostProcessor returns a PostProcessor. A nil engine selects the default
// rules and a non-positive spread selects DefaultSpread.
func NewPostProcessor(engine *rules.Engine, spread float64) *PostProcessor {
	if engine == nil {
		engine = rules.NewDefault()
	}
	if spread <= 0 {
		spread = DefaultSpread
	}
	return &PostProcessor{engine: engine, spread: spread}
}

// Process builds the ProcessedResult for raw under meta.
func (p *PostProcessor) Process(raw float64, meta model.PredictionMetadata) model.ProcessedResult {
	final, applied := p.engine.Apply(raw, meta)
	return model.ProcessedResult{
		PredictedVisitors:  final,
		RawPrediction:      int(math.Trunc(max(-rules.MaximumVisitors, min(raw, rules.MaximumVisitors)))),
		ConfidenceInterval: Interval(final, p.spread),
		CrowdLevel:         Classify(final),
		RulesApplied:       applied,
	}
}
