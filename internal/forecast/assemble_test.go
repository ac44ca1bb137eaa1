package forecast

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/lolweather/lolweather/internal/models"
)

func newTestAssembler(opts ...Option) *Assembler {
	opts = append([]Option{
		WithEmoteChooser(FirstChooser[Emote]{}),
		WithMessageChooser(FirstChooser[string]{}),
	}, opts...)
	return NewAssembler(time.UTC, opts...)
}

func TestAssembleEmpty(t *testing.T) {
	wf := newTestAssembler().Assemble(nil, "Valencia", "ES", nil)
	if wf.Days == nil {
		t.Fatal("Days should be an empty slice, not nil")
	}
	if len(wf.Days) != 0 {
		t.Errorf("len(Days) = %d, want 0", len(wf.Days))
	}
	if wf.CityName != "Valencia" || wf.CountryCode != "ES" {
		t.Errorf("city = %q/%q", wf.CityName, wf.CountryCode)
	}

	b, err := json.Marshal(wf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"days":[]`) {
		t.Errorf("expected empty days array in %s", b)
	}
}

func TestAssembleFiveDays(t *testing.T) {
	var samples []models.WeatherSample
	maxes := []float64{28, 30, 29, 27, 26, 31}
	for i, m := range maxes {
		samples = append(samples, fullDay(5+i, []float64{18, 17, 19, 22, m - 1, m, 24, 20})...)
	}

	wf := newTestAssembler().Assemble(samples, "Valencia", "ES", nil)
	if len(wf.Days) != MaxDays {
		t.Fatalf("len(Days) = %d, want %d", len(wf.Days), MaxDays)
	}

	for i, d := range wf.Days {
		if d.DayIndex != i {
			t.Errorf("Days[%d].DayIndex = %d", i, d.DayIndex)
		}
		if d.IsToday != (i == 0) {
			t.Errorf("Days[%d].IsToday = %v", i, d.IsToday)
		}
		if d.MaxTemp != maxes[i] {
			t.Errorf("Days[%d].MaxTemp = %v, want %v", i, d.MaxTemp, maxes[i])
		}
		if d.ThemeBand != BandFor(d.MaxTemp) {
			t.Errorf("Days[%d].ThemeBand = %s, want band of max %v", i, d.ThemeBand, d.MaxTemp)
		}
		if d.Emote.Band != d.ThemeBand {
			t.Errorf("Days[%d].Emote band = %s, want %s", i, d.Emote.Band, d.ThemeBand)
		}
	}

	if wf.Days[0].DayName != "Today" || wf.Days[1].DayName != "Tomorrow" || wf.Days[2].DayName != "Monday" {
		t.Errorf("day names = %q, %q, %q", wf.Days[0].DayName, wf.Days[1].DayName, wf.Days[2].DayName)
	}
	if wf.Days[0].FullDate != "Today 5 Jul" {
		t.Errorf("FullDate = %q, want Today 5 Jul", wf.Days[0].FullDate)
	}
}

func TestAssembleThemeKeysOnMaxNotAvg(t *testing.T) {
	// max 26 (warm), min 8, avg 17 (cool)
	samples := fullDay(5, []float64{10, 8, 9, 15, 26, 24, 15, 12})
	wf := newTestAssembler().Assemble(samples, "Madrid", "ES", nil)
	d := wf.Days[0]
	if d.AvgTemp != 17 {
		t.Fatalf("AvgTemp = %v, want 17", d.AvgTemp)
	}
	if d.ThemeBand != BandWarm {
		t.Errorf("ThemeBand = %s, want warm", d.ThemeBand)
	}
}

func TestAssembleAppliesCorrectionBeforeSummary(t *testing.T) {
	samples := append(
		fullDay(5, []float64{8, 7, 8, 9, 10, 10, 9, 8}),
		fullDay(6, []float64{15, 14, 16, 20, 25, 24, 18, 16})...,
	)
	wf, corrections := newTestAssembler().AssembleWithCorrections(samples, "Oslo", "NO", nil)

	if !corrections[1].Applied() {
		t.Fatal("expected day 1 to be corrected")
	}
	d := wf.Days[1]
	if !approxEqual(d.MaxTemp, 13) {
		t.Errorf("MaxTemp = %v, want 13", d.MaxTemp)
	}
	factor := 13.0 / 25.0
	if !approxEqual(d.MinTemp, 14*factor) {
		t.Errorf("MinTemp = %v, want %v", d.MinTemp, 14*factor)
	}
	if !approxEqual(d.AvgTemp, (d.MaxTemp+d.MinTemp)/2) {
		t.Errorf("AvgTemp = %v, want midpoint", d.AvgTemp)
	}
	if d.ThemeBand != BandCool {
		t.Errorf("ThemeBand = %s, want cool", d.ThemeBand)
	}
}

func TestAssembleAttachesCurrent(t *testing.T) {
	a := newTestAssembler()
	cur := a.Current(models.WeatherSample{
		Timestamp:     time.Date(2025, 7, 5, 10, 0, 0, 0, time.UTC).Unix(),
		Temperature:   33,
		FeelsLike:     35,
		Humidity:      40,
		WindSpeed:     4,
		ConditionText: "cielo claro",
	}, "Sevilla")

	if cur.ThemeBand != BandHot {
		t.Errorf("ThemeBand = %s, want hot", cur.ThemeBand)
	}
	if cur.Description != "Cielo claro" {
		t.Errorf("Description = %q", cur.Description)
	}
	if cur.Message != Messages(BandHot, MessageAny)[0] {
		t.Errorf("Message = %q", cur.Message)
	}

	wf := a.Assemble(fullDay(5, []float64{25, 24, 25, 30, 34, 35, 30, 27}), "Sevilla", "ES", &cur)
	if wf.Current == nil || wf.Current.CityName != "Sevilla" {
		t.Errorf("Current = %+v", wf.Current)
	}
}

func TestAssembleSpanishLocale(t *testing.T) {
	wf := newTestAssembler(WithLocale(LocaleES)).Assemble(
		fullDay(5, []float64{18, 17, 19, 22, 27, 28, 24, 20}), "Valencia", "ES", nil)
	if wf.Days[0].DayName != "Hoy" {
		t.Errorf("DayName = %q, want Hoy", wf.Days[0].DayName)
	}
}

func TestWeekExtremes(t *testing.T) {
	wf := WeekForecast{Days: []DaySummary{
		{MaxTemp: 25, MinTemp: 12},
		{MaxTemp: 31, MinTemp: 15},
		{MaxTemp: 22, MinTemp: 9},
	}}
	if wf.MaxWeekTemp() != 31 {
		t.Errorf("MaxWeekTemp = %v, want 31", wf.MaxWeekTemp())
	}
	if wf.MinWeekTemp() != 9 {
		t.Errorf("MinWeekTemp = %v, want 9", wf.MinWeekTemp())
	}
	if (WeekForecast{}).MaxWeekTemp() != 0 {
		t.Error("empty MaxWeekTemp should be 0")
	}
}

func TestDaySummaryJSONUsesBandName(t *testing.T) {
	b, err := json.Marshal(DaySummary{ThemeBand: BandScorching})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"theme_band":"scorching"`) {
		t.Errorf("json = %s", b)
	}
}
