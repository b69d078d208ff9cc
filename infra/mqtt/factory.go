package mqtt

import (
	"github.com/kilianp07/pilgrimcast/core/factory"
	coremetrics "github.com/kilianp07/pilgrimcast/core/metrics"
)

// init registers the MQTT prediction sink.
func init() {
	_ = coremetrics.RegisterMetricsSink("mqtt", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		cli, err := NewPahoClient(c)
		if err != nil {
			return nil, err
		}
		c.SetDefaults()
		return NewPredictionSink(cli, c.Topic), nil
	})
}
