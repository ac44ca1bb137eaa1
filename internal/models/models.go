package models

import "time"

// WeatherSample is one 3-hour step from the provider feed.
type WeatherSample struct {
	Timestamp     int64 // seconds since epoch
	Temperature   float64
	FeelsLike     float64
	Humidity      int
	WindSpeed     float64
	ConditionText string
}

// Time returns the sample instant in the given location.
func (s WeatherSample) Time(loc *time.Location) time.Time {
	return time.Unix(s.Timestamp, 0).In(loc)
}

// Scaled returns a copy with temperature and feels-like multiplied by factor.
func (s WeatherSample) Scaled(factor float64) WeatherSample {
	s.Temperature *= factor
	s.FeelsLike *= factor
	return s
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// City is a searchable location. Country is the ISO 3166 alpha-2 code.
type City struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	CountryName string      `json:"country_name,omitempty"`
	Coord       Coordinates `json:"coord"`
	Popular     bool        `json:"popular,omitempty"`
}
