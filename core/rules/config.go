package rules

import "fmt"

// Config holds the thresholds and factors used by the default rule set.
type Config struct {
	WinterClosureCap     float64  `json:"winter_closure_cap"`
	RegularClosureCap    float64  `json:"regular_closure_cap"`
	RoadClosureCap       float64  `json:"road_closure_cap"`
	ExtremeWeatherFactor float64  `json:"extreme_weather_factor"`
	SevereWeatherFactor  float64  `json:"severe_weather_factor"`
	OpenSeasonFloor      float64  `json:"open_season_floor"`
	WinterMonths         []int    `json:"winter_months"`
	SevereWeather        []string `json:"severe_weather"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values with the production thresholds.
func (c *Config) SetDefaults() {
	if c.WinterClosureCap == 0 {
		c.WinterClosureCap = 150
	}
	if c.RegularClosureCap == 0 {
		c.RegularClosureCap = 300
	}
	if c.RoadClosureCap == 0 {
		c.RoadClosureCap = 500
	}
	if c.ExtremeWeatherFactor == 0 {
		c.ExtremeWeatherFactor = 0.7
	}
	if c.SevereWeatherFactor == 0 {
		c.SevereWeatherFactor = 0.6
	}
	if c.OpenSeasonFloor == 0 {
		c.OpenSeasonFloor = 100
	}
	if len(c.WinterMonths) == 0 {
		c.WinterMonths = []int{12, 1, 2}
	}
	if len(c.SevereWeather) == 0 {
		c.SevereWeather = []string{"Snowy", "Heavy Rain"}
	}
}

// Validate checks that thresholds are usable.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"winter_closure_cap":  c.WinterClosureCap,
		"regular_closure_cap": c.RegularClosureCap,
		"road_closure_cap":    c.RoadClosureCap,
		"open_season_floor":   c.OpenSeasonFloor,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.ExtremeWeatherFactor <= 0 || c.ExtremeWeatherFactor > 1 {
		return fmt.Errorf("extreme_weather_factor must be in (0,1]")
	}
	if c.SevereWeatherFactor <= 0 || c.SevereWeatherFactor > 1 {
		return fmt.Errorf("severe_weather_factor must be in (0,1]")
	}
	for _, m := range c.WinterMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("winter month %d out of range", m)
		}
	}
	return nil
}
