package api

import (
	"net/http"
	"strconv"

	"github.com/lolweather/lolweather/internal/forecast"
)

type themeView struct {
	Band        forecast.ThemeBand `json:"band"`
	Min         *float64           `json:"min,omitempty"`
	Max         *float64           `json:"max,omitempty"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Symbol      string             `json:"symbol"`
	Palette     forecast.Palette   `json:"palette"`
	Emotes      []forecast.Emote   `json:"emotes"`
}

func newThemeView(b forecast.ThemeBand) themeView {
	t := forecast.ThemeFor(b)
	v := themeView{
		Band:        b,
		Label:       t.Label,
		Description: t.Description,
		Icon:        t.Icon,
		Symbol:      t.Symbol,
		Palette:     t.Palette,
		Emotes:      forecast.EmotesFor(b),
	}
	// Open ends are infinite and are omitted from JSON.
	lo, hi := b.Range()
	if b != forecast.BandFreezing {
		v.Min = &lo
	}
	if b != forecast.BandScorching {
		v.Max = &hi
	}
	return v
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	views := make([]themeView, 0, len(forecast.Bands))
	for _, b := range forecast.Bands {
		views = append(views, newThemeView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

type messageResponse struct {
	Band    forecast.ThemeBand `json:"band"`
	Message string             `json:"message"`
}

// handleMessage returns a random themed message for ?temp=, optionally
// restricted with ?kind=eco or ?kind=motivational.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	temp, err := strconv.ParseFloat(r.URL.Query().Get("temp"), 64)
	if err != nil {
		http.Error(w, "temp must be a number", http.StatusBadRequest)
		return
	}

	kind := forecast.MessageAny
	switch r.URL.Query().Get("kind") {
	case "", "any":
	case "eco":
		kind = forecast.MessageEco
	case "motivational":
		kind = forecast.MessageMotivational
	default:
		http.Error(w, "kind must be any, eco or motivational", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Band:    forecast.BandFor(temp),
		Message: forecast.MessageFor(temp, kind, s.messages),
	})
}
