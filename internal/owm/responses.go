package owm

import (
	"fmt"
	"strings"

	"github.com/lolweather/lolweather/internal/models"
)

type Main struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// ForecastResponse is the /forecast payload: 3-hour steps for five days.
type ForecastResponse struct {
	Cnt  int            `json:"cnt"`
	List []ForecastItem `json:"list"`
	City *ForecastCity  `json:"city"`
}

type ForecastItem struct {
	Dt      int64       `json:"dt"`
	Main    *Main       `json:"main"`
	Weather []Condition `json:"weather"`
	Wind    *Wind       `json:"wind"`
	DtTxt   string      `json:"dt_txt"`
}

type ForecastCity struct {
	Name     string             `json:"name"`
	Country  string             `json:"country"`
	Coord    models.Coordinates `json:"coord"`
	Timezone int                `json:"timezone"` // offset from UTC in seconds
}

// CurrentResponse is the /weather payload.
type CurrentResponse struct {
	Coord   models.Coordinates `json:"coord"`
	Main    *Main              `json:"main"`
	Weather []Condition        `json:"weather"`
	Wind    *Wind              `json:"wind"`
	Name    string             `json:"name"`
	Dt      int64              `json:"dt"`
	Sys     struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

func (r *ForecastResponse) validate() error {
	if r.List == nil {
		return fmt.Errorf("%w: missing list", ErrMalformed)
	}
	if r.City == nil {
		return fmt.Errorf("%w: missing city", ErrMalformed)
	}
	var missing []string
	for i, item := range r.List {
		if item.Dt == 0 {
			missing = append(missing, fmt.Sprintf("list[%d].dt", i))
		}
		if item.Main == nil {
			missing = append(missing, fmt.Sprintf("list[%d].main", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformed, strings.Join(missing, ", "))
	}
	return nil
}

func (r *CurrentResponse) validate() error {
	if r.Main == nil {
		return fmt.Errorf("%w: missing main", ErrMalformed)
	}
	if len(r.Weather) == 0 {
		return fmt.Errorf("%w: empty weather", ErrMalformed)
	}
	return nil
}

// Samples converts the feed list into samples, in feed order.
func (r *ForecastResponse) Samples() []models.WeatherSample {
	samples := make([]models.WeatherSample, 0, len(r.List))
	for _, item := range r.List {
		samples = append(samples, toSample(item.Dt, item.Main, item.Wind, item.Weather))
	}
	return samples
}

// Sample converts the current conditions into a single sample.
func (r *CurrentResponse) Sample() models.WeatherSample {
	return toSample(r.Dt, r.Main, r.Wind, r.Weather)
}

func toSample(dt int64, main *Main, wind *Wind, weather []Condition) models.WeatherSample {
	s := models.WeatherSample{Timestamp: dt}
	if main != nil {
		s.Temperature = main.Temp
		s.FeelsLike = main.FeelsLike
		s.Humidity = main.Humidity
	}
	if wind != nil {
		s.WindSpeed = wind.Speed
	}
	if len(weather) > 0 {
		s.ConditionText = weather[0].Description
	}
	return s
}
