package model

// TempleStatus describes whether the shrine accepts pilgrims.
type TempleStatus string

const (
	TempleOpen    TempleStatus = "Open"
	TempleLimited TempleStatus = "Limited"
	TempleClosed  TempleStatus = "Closed"
)

// Valid reports whether s is a known temple status.
func (s TempleStatus) Valid() bool {
	switch s {
	case TempleOpen, TempleLimited, TempleClosed:
		return true
	default:
		return false
	}
}

// RoadCondition describes the access road to the site.
type RoadCondition string

const (
	RoadGood   RoadCondition = "Good"
	RoadFair   RoadCondition = "Fair"
	RoadPoor   RoadCondition = "Poor"
	RoadClosed RoadCondition = "Closed"
)

// Valid reports whether r is a known road condition.
func (r RoadCondition) Valid() bool {
	switch r {
	case RoadGood, RoadFair, RoadPoor, RoadClosed:
		return true
	default:
		return false
	}
}

// WeatherCondition is the forecast weather label. The set is open: unknown
// labels are carried through unchanged.
type WeatherCondition string

const (
	WeatherClear     WeatherCondition = "Clear"
	WeatherSunny     WeatherCondition = "Sunny"
	WeatherCloudy    WeatherCondition = "Cloudy"
	WeatherRainy     WeatherCondition = "Rainy"
	WeatherSnowy     WeatherCondition = "Snowy"
	WeatherFoggy     WeatherCondition = "Foggy"
	WeatherHeavyRain WeatherCondition = "Heavy Rain"
)

// Metadata payload keys.
const (
	KeyYatraSeason      = "yatra_season"
	KeyTempleOpenStatus = "temple_open_status"
	KeyRoadCondition    = "road_condition"
	KeyWeatherCondition = "weather_condition"
	KeyMonth            = "month"
	KeyExtremeWeather   = "extreme_weather"
)

// PredictionMetadata carries the request context consumed by the rule engine.
type PredictionMetadata struct {
	YatraSeason      int              `json:"yatra_season"`
	TempleOpenStatus TempleStatus     `json:"temple_open_status"`
	RoadCondition    RoadCondition    `json:"road_condition"`
	WeatherCondition WeatherCondition `json:"weather_condition"`
	Month            int              `json:"month"`
	ExtremeWeather   int              `json:"extreme_weather"`
}

// DefaultMetadata returns the values assumed for fields absent from a request.
func DefaultMetadata() PredictionMetadata {
	return PredictionMetadata{
		YatraSeason:      1,
		TempleOpenStatus: TempleOpen,
		RoadCondition:    RoadGood,
		WeatherCondition: WeatherClear,
		Month:            6,
		ExtremeWeather:   0,
	}
}

// SeasonOpen reports whether the yatra season is running.
func (m PredictionMetadata) SeasonOpen() bool { return m.YatraSeason == 1 }

// SeasonClosed reports whether the site is closed for the season.
func (m PredictionMetadata) SeasonClosed() bool { return m.YatraSeason == 0 }
