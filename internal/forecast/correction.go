package forecast

import (
	"math"
	"time"

	"github.com/lolweather/lolweather/internal/models"
)

const (
	// maxDayJump is the largest day-to-day change in max temperature left alone.
	maxDayJump = 6.0
	// clampStep is how far from the previous max a clamped day lands.
	clampStep = 3.0
)

// Correction records what happened to one day's max temperature.
type Correction struct {
	DayIndex     int
	RawMax       float64
	CorrectedMax float64
	Factor       float64
}

// Applied reports whether the day's samples were rescaled.
func (c Correction) Applied() bool {
	return c.Factor != 1
}

// correctionState is the fold accumulator carried from day to day.
type correctionState struct {
	previousMax float64
}

// Correct damps non-physical jumps between consecutive daily maxima. Buckets
// are processed in order; each day is compared with the corrected max of the
// day before, and when clamped every sample's temperature and feels-like is
// rescaled by the same factor. The input is not modified.
func Correct(buckets []DayBucket, loc *time.Location) ([]DayBucket, []Correction) {
	if loc == nil {
		loc = time.UTC
	}

	out := make([]DayBucket, len(buckets))
	corrections := make([]Correction, len(buckets))

	var state correctionState
	for i, b := range buckets {
		rawMax := dayMax(b, loc)

		if i == 0 {
			out[i] = b
			corrections[i] = Correction{DayIndex: i, RawMax: rawMax, CorrectedMax: rawMax, Factor: 1}
			state.previousMax = rawMax
			continue
		}

		correctedMax := correctMax(rawMax, state.previousMax)
		factor := scaleFactor(correctedMax, rawMax)

		out[i] = scaleBucket(b, factor)
		corrections[i] = Correction{DayIndex: i, RawMax: rawMax, CorrectedMax: correctedMax, Factor: factor}
		state.previousMax = correctedMax
	}

	return out, corrections
}

// correctMax clamps current toward previous when they differ by more than maxDayJump.
func correctMax(current, previous float64) float64 {
	if math.Abs(current-previous) <= maxDayJump {
		return current
	}
	if current > previous {
		return previous + clampStep
	}
	return math.Max(previous-clampStep, current)
}

func scaleFactor(corrected, raw float64) float64 {
	if raw == 0 || corrected == raw {
		return 1
	}
	return corrected / raw
}

func scaleBucket(b DayBucket, factor float64) DayBucket {
	if factor == 1 {
		return b
	}
	samples := make([]models.WeatherSample, len(b.Samples))
	for i, s := range b.Samples {
		samples[i] = s.Scaled(factor)
	}
	return DayBucket{Date: b.Date, Samples: samples}
}

// Flatten returns the samples of all buckets in order.
func Flatten(buckets []DayBucket) []models.WeatherSample {
	var out []models.WeatherSample
	for _, b := range buckets {
		out = append(out, b.Samples...)
	}
	return out
}
