package forecast

import (
	"time"

	"github.com/lolweather/lolweather/internal/models"
)

// DaySummary is one displayed day of a corrected forecast.
type DaySummary struct {
	DayIndex                int       `json:"day_index"`
	DayName                 string    `json:"day_name"`
	ShortDate               string    `json:"short_date"`
	FullDate                string    `json:"full_date"`
	MaxTemp                 float64   `json:"max_temp"`
	MinTemp                 float64   `json:"min_temp"`
	AvgTemp                 float64   `json:"avg_temp"`
	DominantCondition       string    `json:"description"`
	AvgHumidity             int       `json:"humidity"`
	AvgWindSpeed            float64   `json:"wind_speed"`
	ThemeBand               ThemeBand `json:"theme_band"`
	Emote                   Emote     `json:"emote"`
	RepresentativeTimestamp int64     `json:"timestamp"`
	IsToday                 bool      `json:"is_today"`
}

// CurrentWeather is the current-conditions snapshot.
type CurrentWeather struct {
	CityName    string    `json:"city_name"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Description string    `json:"description"`
	ThemeBand   ThemeBand `json:"theme_band"`
	Emote       Emote     `json:"emote"`
	Message     string    `json:"message"`
	ObservedAt  int64     `json:"observed_at"`
}

// WeekForecast holds at most MaxDays days in ascending DayIndex order.
type WeekForecast struct {
	CityName    string          `json:"city_name"`
	CountryCode string          `json:"country"`
	Days        []DaySummary    `json:"days"`
	Current     *CurrentWeather `json:"current,omitempty"`
}

// MaxWeekTemp returns the highest daily max, or 0 without days.
func (w WeekForecast) MaxWeekTemp() float64 {
	if len(w.Days) == 0 {
		return 0
	}
	max := w.Days[0].MaxTemp
	for _, d := range w.Days[1:] {
		if d.MaxTemp > max {
			max = d.MaxTemp
		}
	}
	return max
}

// MinWeekTemp returns the lowest daily min, or 0 without days.
func (w WeekForecast) MinWeekTemp() float64 {
	if len(w.Days) == 0 {
		return 0
	}
	min := w.Days[0].MinTemp
	for _, d := range w.Days[1:] {
		if d.MinTemp < min {
			min = d.MinTemp
		}
	}
	return min
}

// Assembler turns raw feed samples into a WeekForecast.
type Assembler struct {
	loc      *time.Location
	locale   Locale
	emotes   Chooser[Emote]
	messages Chooser[string]
}

type Option func(*Assembler)

// WithLocale sets the words used for day labels.
func WithLocale(l Locale) Option {
	return func(a *Assembler) { a.locale = l }
}

// WithEmoteChooser replaces the random emote selection.
func WithEmoteChooser(c Chooser[Emote]) Option {
	return func(a *Assembler) { a.emotes = c }
}

// WithMessageChooser replaces the random message selection.
func WithMessageChooser(c Chooser[string]) Option {
	return func(a *Assembler) { a.messages = c }
}

// NewAssembler creates an assembler bucketing days in loc.
func NewAssembler(loc *time.Location, opts ...Option) *Assembler {
	if loc == nil {
		loc = time.UTC
	}
	a := &Assembler{
		loc:      loc,
		locale:   LocaleEN,
		emotes:   NewRandomChooser[Emote](0),
		messages: NewRandomChooser[string](0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location returns the reference timezone used for day bucketing.
func (a *Assembler) Location() *time.Location {
	return a.loc
}

// Assemble groups, corrects and summarizes samples. An empty input yields a
// forecast with no days.
func (a *Assembler) Assemble(samples []models.WeatherSample, cityName, countryCode string, current *CurrentWeather) WeekForecast {
	wf, _ := a.AssembleWithCorrections(samples, cityName, countryCode, current)
	return wf
}

// AssembleWithCorrections is Assemble that also reports the per-day corrections.
func (a *Assembler) AssembleWithCorrections(samples []models.WeatherSample, cityName, countryCode string, current *CurrentWeather) (WeekForecast, []Correction) {
	wf := WeekForecast{
		CityName:    cityName,
		CountryCode: countryCode,
		Days:        []DaySummary{},
		Current:     current,
	}
	if len(samples) == 0 {
		return wf, nil
	}

	corrected, corrections := Correct(GroupByDay(samples, a.loc), a.loc)
	buckets := GroupByDay(Flatten(corrected), a.loc)

	for i, b := range buckets {
		wf.Days = append(wf.Days, a.summarizeDay(b, i))
	}
	return wf, corrections
}

func (a *Assembler) summarizeDay(b DayBucket, dayIndex int) DaySummary {
	stats := Summarize(b, a.loc)
	dayName, shortDate, fullDate := a.locale.DayLabels(dayIndex, stats.RepresentativeTimestamp, a.loc)

	return DaySummary{
		DayIndex:                dayIndex,
		DayName:                 dayName,
		ShortDate:               shortDate,
		FullDate:                fullDate,
		MaxTemp:                 stats.MaxTemp,
		MinTemp:                 stats.MinTemp,
		AvgTemp:                 stats.AvgTemp,
		DominantCondition:       stats.DominantCondition,
		AvgHumidity:             stats.AvgHumidity,
		AvgWindSpeed:            stats.AvgWindSpeed,
		ThemeBand:               BandFor(stats.MaxTemp),
		Emote:                   EmoteFor(stats.MaxTemp, a.emotes),
		RepresentativeTimestamp: stats.RepresentativeTimestamp,
		IsToday:                 dayIndex == 0,
	}
}

// Current builds the current-conditions snapshot from one observation.
func (a *Assembler) Current(s models.WeatherSample, cityName string) CurrentWeather {
	return CurrentWeather{
		CityName:    cityName,
		Temperature: s.Temperature,
		FeelsLike:   s.FeelsLike,
		Humidity:    s.Humidity,
		WindSpeed:   s.WindSpeed,
		Description: capitalize(s.ConditionText),
		ThemeBand:   BandFor(s.Temperature),
		Emote:       EmoteFor(s.Temperature, a.emotes),
		Message:     MessageFor(s.Temperature, MessageAny, a.messages),
		ObservedAt:  s.Timestamp,
	}
}
