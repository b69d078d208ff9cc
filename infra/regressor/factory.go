package regressor

import (
	"github.com/kilianp07/pilgrimcast/core/factory"
	"github.com/kilianp07/pilgrimcast/core/prediction"
)

// init registers the built-in regressors.
func init() {
	_ = prediction.RegisterRegressor("linear", func(conf map[string]any) (prediction.Regressor, error) {
		var c LinearConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewLinear(c)
	})

	_ = prediction.RegisterRegressor("ensemble", func(conf map[string]any) (prediction.Regressor, error) {
		var c EnsembleConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewEnsemble(c)
	})

	_ = prediction.RegisterRegressor("remote", func(conf map[string]any) (prediction.Regressor, error) {
		var c RemoteConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRemote(c)
	})

	_ = prediction.RegisterRegressor("constant", func(conf map[string]any) (prediction.Regressor, error) {
		var c struct {
			Value float64 `json:"value"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return &prediction.MockRegressor{Value: c.Value}, nil
	})
}
