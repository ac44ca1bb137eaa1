package forecast

import (
	"fmt"
	"strings"
	"time"
)

// SkyCondition is a coarse category of the provider's condition text.
type SkyCondition string

const (
	SkyClear   SkyCondition = "clear"
	SkyClouds  SkyCondition = "clouds"
	SkyRain    SkyCondition = "rain"
	SkyStorm   SkyCondition = "storm"
	SkySnow    SkyCondition = "snow"
	SkyFog     SkyCondition = "fog"
	SkyUnknown SkyCondition = "unknown"
)

// TimeOfDay represents the lighting period.
type TimeOfDay string

const (
	TimeDay   TimeOfDay = "day"
	TimeDusk  TimeOfDay = "dusk"
	TimeNight TimeOfDay = "night"
	TimeDawn  TimeOfDay = "dawn"
)

// GetTimeOfDay returns the time-of-day category for a local time.
func GetTimeOfDay(t time.Time) TimeOfDay {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 7:
		return TimeDawn
	case hour >= 7 && hour < 17:
		return TimeDay
	case hour >= 17 && hour < 20:
		return TimeDusk
	default:
		return TimeNight
	}
}

// ExtractSky categorizes a condition description. Both English and Spanish
// provider wording is recognised.
func ExtractSky(description string) SkyCondition {
	lower := strings.ToLower(description)

	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case lower == "":
		return SkyUnknown
	case contains("thunder", "storm", "tormenta"):
		return SkyStorm
	case contains("snow", "sleet", "nieve", "aguanieve"):
		return SkySnow
	case contains("rain", "drizzle", "shower", "lluvia", "llovizna", "chubasco"):
		return SkyRain
	case contains("fog", "mist", "haze", "niebla", "bruma", "neblina", "calima"):
		return SkyFog
	case contains("cloud", "overcast", "nube", "nublado", "nubes"):
		return SkyClouds
	case contains("clear", "sun", "despejado", "claro", "soleado"):
		return SkyClear
	default:
		return SkyUnknown
	}
}

// baseStylePrompt defines the consistent visual style for all generated banners.
const baseStylePrompt = `Playful fantasy-game style illustration of a small town square under the open sky.
Bright saturated colours, soft cel shading, cheerful and readable at small sizes.
Wide panoramic composition suitable for a mobile header banner.
No text, no logos, no real people.`

var bandPrompts = map[ThemeBand]string{
	BandFreezing:    "Freezing cold, ice crystals, frosted rooftops, breath visible in the air.",
	BandCold:        "Cold crisp air, people in scarves, pale winter light.",
	BandCool:        "Fresh cool day, light breeze moving leaves.",
	BandComfortable: "Perfect mild weather, green trees, relaxed atmosphere.",
	BandWarm:        "Warm summer day, bright sun, shade under trees.",
	BandHot:         "Hot day, heat shimmer over stone, dry golden tones.",
	BandScorching:   "Extreme heat, blazing sun, cracked ground, orange haze.",
}

var skyPrompts = map[SkyCondition]string{
	SkyClear:  "Clear sky, no clouds.",
	SkyClouds: "Cloudy sky with soft diffused light.",
	SkyRain:   "Rain falling, wet glistening streets.",
	SkyStorm:  "Dramatic storm clouds and distant lightning.",
	SkySnow:   "Snow falling gently, white rooftops.",
	SkyFog:    "Mist drifting through the streets, soft edges.",
}

var timePrompts = map[TimeOfDay]string{
	TimeDawn:  "Early dawn, soft pink glow on the horizon.",
	TimeDay:   "Midday, bright daylight.",
	TimeDusk:  "Sunset, golden hour, long shadows.",
	TimeNight: "Night scene, dark blue sky with stars, warm street lamps.",
}

// BannerKey identifies one generated banner.
func BannerKey(b ThemeBand, sky SkyCondition, tod TimeOfDay) string {
	return fmt.Sprintf("%s_%s_%s", b, sky, tod)
}

// BuildPrompt creates the image generation prompt for a band, sky and time of day.
func BuildPrompt(b ThemeBand, sky SkyCondition, tod TimeOfDay) string {
	bandDesc, ok := bandPrompts[b]
	if !ok {
		bandDesc = bandPrompts[BandComfortable]
	}
	skyDesc, ok := skyPrompts[sky]
	if !ok {
		skyDesc = skyPrompts[SkyClear]
	}
	timeDesc, ok := timePrompts[tod]
	if !ok {
		timeDesc = timePrompts[TimeDay]
	}
	return fmt.Sprintf("%s\n\n%s\n\nWeather: %s %s", timeDesc, baseStylePrompt, bandDesc, skyDesc)
}
