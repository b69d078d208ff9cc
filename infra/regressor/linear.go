package regressor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LinearConfig holds the parameters of a fitted linear model.
type LinearConfig struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Linear evaluates intercept + coefficients·features.
type Linear struct {
	intercept float64
	coef      *mat.VecDense
}

// NewLinear validates cfg and returns a Linear model.
func NewLinear(cfg LinearConfig) (*Linear, error) {
	if len(cfg.Coefficients) == 0 {
		return nil, errors.New("linear model has no coefficients")
	}
	for i, c := range cfg.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	coef := make([]float64, len(cfg.Coefficients))
	copy(coef, cfg.Coefficients)
	return &Linear{intercept: cfg.Intercept, coef: mat.NewVecDense(len(coef), coef)}, nil
}

// Predict implements prediction.Regressor.
func (l *Linear) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != l.coef.Len() {
		return 0, fmt.Errorf("linear model expects %d features, got %d", l.coef.Len(), len(features))
	}
	x := mat.NewVecDense(len(features), features)
	return l.intercept + mat.Dot(l.coef, x), nil
}
