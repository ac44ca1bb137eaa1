package forecast

// Palette defines the colours for a band.
type Palette struct {
	// GradientTop and GradientBottom are the vertical background gradient stops
	GradientTop    string `json:"gradient_top"`
	GradientBottom string `json:"gradient_bottom"`
	// Radial is the inner/outer pair used behind the emote
	RadialInner string `json:"radial_inner"`
	RadialOuter string `json:"radial_outer"`
	// Chart is the bar colour on temperature charts
	Chart string `json:"chart"`
	// Text is the primary text colour on top of the gradient
	Text string `json:"text"`
}

// DefaultPalette is used when no temperature is known yet.
var DefaultPalette = Palette{
	GradientTop:    "#2196F3",
	GradientBottom: "#21CBF3",
	RadialInner:    "#42A5F5",
	RadialOuter:    "#1565C0",
	Chart:          "#00C853",
	Text:           "#FFFFFF",
}

var bandPalettes = map[ThemeBand]Palette{
	BandFreezing: {
		GradientTop:    "#0D47A1",
		GradientBottom: "#1976D2",
		RadialInner:    "#42A5F5",
		RadialOuter:    "#1565C0",
		Chart:          "#1976D2",
		Text:           "#FFFFFF",
	},
	BandCold: {
		GradientTop:    "#1565C0",
		GradientBottom: "#42A5F5",
		RadialInner:    "#66BB6A",
		RadialOuter:    "#1976D2",
		Chart:          "#0288D1",
		Text:           "#FFFFFF",
	},
	BandCool: {
		GradientTop:    "#0277BD",
		GradientBottom: "#29B6F6",
		RadialInner:    "#4DD0E1",
		RadialOuter:    "#0277BD",
		Chart:          "#00ACC1",
		Text:           "#FFFFFF",
	},
	BandComfortable: {
		GradientTop:    "#2E7D32",
		GradientBottom: "#66BB6A",
		RadialInner:    "#81C784",
		RadialOuter:    "#2E7D32",
		Chart:          "#00C853",
		Text:           "#FFFFFF",
	},
	BandWarm: {
		GradientTop:    "#F57F17",
		GradientBottom: "#FFCA28",
		RadialInner:    "#FFD54F",
		RadialOuter:    "#F57F17",
		Chart:          "#FFC107",
		Text:           "#212121",
	},
	BandHot: {
		GradientTop:    "#E65100",
		GradientBottom: "#FF9800",
		RadialInner:    "#FFB74D",
		RadialOuter:    "#E65100",
		Chart:          "#FF9800",
		Text:           "#FFFFFF",
	},
	BandScorching: {
		GradientTop:    "#D84315",
		GradientBottom: "#FF5722",
		RadialInner:    "#FF8A65",
		RadialOuter:    "#BF360C",
		Chart:          "#E53935",
		Text:           "#FFFFFF",
	},
}

// GetPalette returns the palette for a temperature.
func GetPalette(temp float64) Palette {
	if p, ok := bandPalettes[BandFor(temp)]; ok {
		return p
	}
	return DefaultPalette
}

// WeekPalette keys the week view on the midpoint of the week's extremes.
func WeekPalette(maxTemp, minTemp float64) Palette {
	return GetPalette((maxTemp + minTemp) / 2)
}
