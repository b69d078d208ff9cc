// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation. Regressors and metrics sinks are both built this
// way, so a config file can switch the model or add a sink without code
// changes.
//
// Example usage:
//
//	reg := factory.NewRegistry[prediction.Regressor]()
//	reg.Register("constant", func(conf map[string]any) (prediction.Regressor, error) {
//	    var c struct{ Value float64 `json:"value"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return &prediction.MockRegressor{Value: c.Value}, nil
//	})
//	m, err := reg.Create(factory.ModuleConfig{Type: "constant", Conf: map[string]any{"value": 1200}})
package factory
