package rules

import (
	"math"
	"slices"

	"github.com/kilianp07/pilgrimcast/core/model"
)

// MinimumVisitors is the unconditional floor applied after every rule.
const MinimumVisitors = 50

// MaximumVisitors is the largest value Apply returns. Integers up to 2^53 are
// exact in float64, and the value and its confidence band stay within int range.
const MaximumVisitors = 1 << 53

// Rule names recorded in the audit trail.
const (
	WinterClosureCap        = "Winter closure cap"
	RegularClosureCap       = "Regular closure cap"
	RoadClosureCap          = "Road closure cap"
	ExtremeWeatherReduction = "Extreme weather reduction"
	SevereWeatherReduction  = "Severe weather reduction"
	MinimumVisitorsFloor    = "Minimum visitors floor"
)

// Rule transforms the running prediction when its predicate holds.
type Rule struct {
	Name  string
	When  func(model.PredictionMetadata) bool
	Apply func(float64) float64
}

// Engine applies an ordered rule list cumulatively.
type Engine struct {
	rules []Rule
}

// New returns an Engine evaluating rules in the given order.
func New(rules ...Rule) *Engine {
	return &Engine{rules: slices.Clone(rules)}
}

// NewDefault returns an Engine with the production rule set.
func NewDefault() *Engine {
	return New(DefaultRules(DefaultConfig())...)
}

// Rules returns a copy of the configured rules in evaluation order.
func (e *Engine) Rules() []Rule { return slices.Clone(e.rules) }

// Apply folds every matching rule over raw, applies the silent floor and
// truncates the result. It returns the names of the rules that fired, in order.
// raw is expected to be finite; NaN collapses to the floor.
func (e *Engine) Apply(raw float64, meta model.PredictionMetadata) (int, []string) {
	v := raw
	applied := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		if !r.When(meta) {
			continue
		}
		v = r.Apply(v)
		applied = append(applied, r.Name)
	}
	if !(v >= MinimumVisitors) {
		v = MinimumVisitors
	}
	if v > MaximumVisitors {
		v = MaximumVisitors
	}
	return int(math.Trunc(v)), applied
}

// DefaultRules builds the production rule list from cfg.
func DefaultRules(cfg Config) []Rule {
	winter := slices.Clone(cfg.WinterMonths)
	severe := slices.Clone(cfg.SevereWeather)
	isWinter := func(m model.PredictionMetadata) bool { return slices.Contains(winter, m.Month) }
	return []Rule{
		{
			Name:  WinterClosureCap,
			When:  func(m model.PredictionMetadata) bool { return m.SeasonClosed() && isWinter(m) },
			Apply: capAt(cfg.WinterClosureCap),
		},
		{
			Name:  RegularClosureCap,
			When:  func(m model.PredictionMetadata) bool { return m.SeasonClosed() && !isWinter(m) },
			Apply: capAt(cfg.RegularClosureCap),
		},
		{
			Name:  RoadClosureCap,
			When:  func(m model.PredictionMetadata) bool { return m.RoadCondition == model.RoadClosed },
			Apply: capAt(cfg.RoadClosureCap),
		},
		{
			Name:  ExtremeWeatherReduction,
			When:  func(m model.PredictionMetadata) bool { return m.ExtremeWeather == 1 },
			Apply: scaleBy(cfg.ExtremeWeatherFactor),
		},
		{
			Name: SevereWeatherReduction,
			When: func(m model.PredictionMetadata) bool {
				return slices.Contains(severe, string(m.WeatherCondition))
			},
			Apply: scaleBy(cfg.SevereWeatherFactor),
		},
		{
			Name:  MinimumVisitorsFloor,
			When:  func(m model.PredictionMetadata) bool { return m.SeasonOpen() },
			Apply: floorAt(cfg.OpenSeasonFloor),
		},
	}
}

func capAt(limit float64) func(float64) float64 {
	return func(v float64) float64 { return math.Min(v, limit) }
}

func floorAt(limit float64) func(float64) float64 {
	return func(v float64) float64 { return math.Max(v, limit) }
}

func scaleBy(f float64) func(float64) float64 {
	return func(v float64) float64 { return v * f }
}
