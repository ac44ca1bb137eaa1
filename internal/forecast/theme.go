package forecast

import (
	"fmt"
	"math"
)

// ThemeBand is one of seven half-open temperature intervals, lower bound inclusive.
type ThemeBand int

const (
	BandFreezing ThemeBand = iota // (-inf, 0)
	BandCold                      // [0, 10)
	BandCool                      // [10, 18)
	BandComfortable               // [18, 25)
	BandWarm                      // [25, 32)
	BandHot                       // [32, 38)
	BandScorching                 // [38, +inf)
)

// Bands lists every band in ascending temperature order.
var Bands = []ThemeBand{
	BandFreezing,
	BandCold,
	BandCool,
	BandComfortable,
	BandWarm,
	BandHot,
	BandScorching,
}

var bandLower = [...]float64{math.Inf(-1), 0, 10, 18, 25, 32, 38}

// BandFor maps a temperature in °C to its band. NaN resolves to BandComfortable,
// the same band the themed UI falls back to when nothing matches.
func BandFor(temp float64) ThemeBand {
	switch {
	case math.IsNaN(temp):
		return BandComfortable
	case temp < 0:
		return BandFreezing
	case temp < 10:
		return BandCold
	case temp < 18:
		return BandCool
	case temp < 25:
		return BandComfortable
	case temp < 32:
		return BandWarm
	case temp < 38:
		return BandHot
	default:
		return BandScorching
	}
}

// Range returns the band's [min, max) interval.
func (b ThemeBand) Range() (min, max float64) {
	if b < BandFreezing || b > BandScorching {
		return math.NaN(), math.NaN()
	}
	min = bandLower[b]
	if b == BandScorching {
		return min, math.Inf(1)
	}
	return min, bandLower[b+1]
}

// Contains reports whether temp falls in the band.
func (b ThemeBand) Contains(temp float64) bool {
	min, max := b.Range()
	return temp >= min && temp < max
}

func (b ThemeBand) String() string {
	switch b {
	case BandFreezing:
		return "freezing"
	case BandCold:
		return "cold"
	case BandCool:
		return "cool"
	case BandComfortable:
		return "comfortable"
	case BandWarm:
		return "warm"
	case BandHot:
		return "hot"
	case BandScorching:
		return "scorching"
	default:
		return fmt.Sprintf("ThemeBand(%d)", int(b))
	}
}

// ParseBand resolves a band from its String form.
func ParseBand(s string) (ThemeBand, bool) {
	for _, b := range Bands {
		if b.String() == s {
			return b, true
		}
	}
	return 0, false
}

func (b ThemeBand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *ThemeBand) UnmarshalText(text []byte) error {
	parsed, ok := ParseBand(string(text))
	if !ok {
		return fmt.Errorf("unknown theme band %q", text)
	}
	*b = parsed
	return nil
}

// Theme is the deterministic presentation data for a band.
type Theme struct {
	Band        ThemeBand
	Label       string
	Description string
	Icon        string // asset name shared with the mobile clients
	Symbol      string
	Palette     Palette
}

// ThemeFor returns the theme for a band.
func ThemeFor(b ThemeBand) Theme {
	switch b {
	case BandFreezing:
		return Theme{b, "Congelándote", "¡Congelándote, campeón!", "porohelado", "🐧", bandPalettes[b]}
	case BandCold:
		return Theme{b, "Frío", "Frío de Freljord", "nevar", "❄️", bandPalettes[b]}
	case BandCool:
		return Theme{b, "Fresco", "Fresco como Ashe", "fresco", "😊", bandPalettes[b]}
	case BandComfortable:
		return Theme{b, "Perfecto", "¡Perfecto para jugar LoL!", "tiempoperfecto", "😎", bandPalettes[b]}
	case BandWarm:
		return Theme{b, "Calorcito", "Calorcito de Shurima", "calor", "😅", bandPalettes[b]}
	case BandHot:
		return Theme{b, "Calor", "¡Calor de Brand!", "muchocalor", "🥵", bandPalettes[b]}
	case BandScorching:
		return Theme{b, "Te derrites", "¡Te derrites como un Poro!", "muuchocalor", "🔥", bandPalettes[b]}
	default:
		return ThemeFor(BandComfortable)
	}
}
