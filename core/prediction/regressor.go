package prediction

import (
	"context"

	"github.com/kilianp07/pilgrimcast/core/factory"
)

// Regressor maps an aligned feature vector to a raw next-day visitor count.
type Regressor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

// RegressorFunc adapts a function to the Regressor interface.
type RegressorFunc func(ctx context.Context, features []float64) (float64, error)

// Predict calls f.
func (f RegressorFunc) Predict(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

var regressorRegistry = factory.NewRegistry[Regressor]()

// RegisterRegressor adds a regressor factory identified by name.
func RegisterRegressor(name string, f factory.Factory[Regressor]) error {
	return regressorRegistry.Register(name, f)
}

// NewRegressor creates a Regressor from its module configuration.
func NewRegressor(cfg factory.ModuleConfig) (Regressor, error) {
	return regressorRegistry.Create(cfg)
}
