package forecast

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lolweather/lolweather/internal/models"
)

const (
	// MaxDays is the number of calendar days a forecast keeps.
	MaxDays = 5

	daytimeStartHour   = 12
	daytimeEndHour     = 15
	nighttimeStartHour = 3
	nighttimeEndHour   = 6

	fallbackCondition = "Variado"
)

// DayBucket holds the samples sharing one calendar date in the reference timezone.
type DayBucket struct {
	Date    time.Time // local midnight
	Samples []models.WeatherSample
}

// DayStats is the numeric summary of a bucket, before labels and theming.
type DayStats struct {
	MaxTemp                 float64
	MinTemp                 float64
	AvgTemp                 float64
	DominantCondition       string
	AvgHumidity             int
	AvgWindSpeed            float64
	RepresentativeTimestamp int64
}

// GroupByDay groups samples by local calendar date, keeping first-seen date
// order. Dates beyond the fifth are dropped.
func GroupByDay(samples []models.WeatherSample, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.UTC
	}

	var buckets []DayBucket
	index := make(map[string]int)

	for _, s := range samples {
		t := s.Time(loc)
		key := t.Format("2006-01-02")

		i, ok := index[key]
		if !ok {
			if len(buckets) == MaxDays {
				continue
			}
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DayBucket{
				Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
			})
		}
		buckets[i].Samples = append(buckets[i].Samples, s)
	}

	return buckets
}

// daytime and nighttime return the samples in the [12,15] and [3,6] local hour
// windows, or the whole bucket when the window is empty.
func (b DayBucket) daytime(loc *time.Location) []models.WeatherSample {
	return b.window(loc, daytimeStartHour, daytimeEndHour)
}

func (b DayBucket) nighttime(loc *time.Location) []models.WeatherSample {
	return b.window(loc, nighttimeStartHour, nighttimeEndHour)
}

func (b DayBucket) window(loc *time.Location, startHour, endHour int) []models.WeatherSample {
	var out []models.WeatherSample
	for _, s := range b.Samples {
		h := s.Time(loc).Hour()
		if h >= startHour && h <= endHour {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return b.Samples
	}
	return out
}

// Summarize computes the numeric stats of a bucket. An empty bucket yields
// zero values.
func Summarize(b DayBucket, loc *time.Location) DayStats {
	if loc == nil {
		loc = time.UTC
	}
	if len(b.Samples) == 0 {
		return DayStats{DominantCondition: fallbackCondition}
	}

	day := b.daytime(loc)
	night := b.nighttime(loc)

	maxTemp := dayMax(b, loc)
	minTemp := night[0].Temperature
	for _, s := range night[1:] {
		minTemp = math.Min(minTemp, s.Temperature)
	}

	var humiditySum, windSum float64
	for _, s := range b.Samples {
		humiditySum += float64(s.Humidity)
		windSum += s.WindSpeed
	}
	n := float64(len(b.Samples))

	return DayStats{
		MaxTemp:                 maxTemp,
		MinTemp:                 minTemp,
		AvgTemp:                 (maxTemp + minTemp) / 2,
		DominantCondition:       capitalize(dominantCondition(day)),
		AvgHumidity:             int(math.Round(humiditySum / n)),
		AvgWindSpeed:            windSum / n,
		RepresentativeTimestamp: b.Samples[0].Timestamp,
	}
}

// dayMax is the max used both for display and as the correction anchor.
func dayMax(b DayBucket, loc *time.Location) float64 {
	day := b.daytime(loc)
	if len(day) == 0 {
		return 0
	}
	max := day[0].Temperature
	for _, s := range day[1:] {
		max = math.Max(max, s.Temperature)
	}
	return max
}

// dominantCondition returns the most frequent condition text. Ties go to the
// value seen first.
func dominantCondition(samples []models.WeatherSample) string {
	counts := make(map[string]int)
	var order []string
	for _, s := range samples {
		if s.ConditionText == "" {
			continue
		}
		if counts[s.ConditionText] == 0 {
			order = append(order, s.ConditionText)
		}
		counts[s.ConditionText]++
	}

	best, bestCount := fallbackCondition, 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Locale holds the words used for day labels.
type Locale struct {
	Today    string
	Tomorrow string
	Weekdays [7]string // indexed by time.Weekday
	Months   [12]string
}

var LocaleEN = Locale{
	Today:    "Today",
	Tomorrow: "Tomorrow",
	Weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	Months:   [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

var LocaleES = Locale{
	Today:    "Hoy",
	Tomorrow: "Mañana",
	Weekdays: [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"},
	Months:   [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"},
}

// ParseLocale maps a language code to a locale, defaulting to English.
func ParseLocale(lang string) Locale {
	if strings.HasPrefix(strings.ToLower(lang), "es") {
		return LocaleES
	}
	return LocaleEN
}

// DayLabels derives the day name, short date ("5 Jul") and full date
// ("Saturday 5 Jul") for a position in the forecast.
func (l Locale) DayLabels(dayIndex int, ts int64, loc *time.Location) (dayName, shortDate, fullDate string) {
	if dayIndex < 0 {
		panic(fmt.Sprintf("forecast: negative day index %d", dayIndex))
	}
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(ts, 0).In(loc)

	switch dayIndex {
	case 0:
		dayName = l.Today
	case 1:
		dayName = l.Tomorrow
	default:
		dayName = l.Weekdays[t.Weekday()]
	}
	shortDate = fmt.Sprintf("%d %s", t.Day(), l.Months[t.Month()-1])
	fullDate = dayName + " " + shortDate
	return dayName, shortDate, fullDate
}
