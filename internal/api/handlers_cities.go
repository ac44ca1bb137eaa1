package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lolweather/lolweather/internal/cities"
	"github.com/lolweather/lolweather/internal/models"
)

var errStoreDisabled = errors.New("favorites storage is not configured")

type citiesResponse struct {
	Query  string        `json:"query,omitempty"`
	Cities []models.City `json:"cities"`
}

func (s *Server) handleCitySearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, citiesResponse{Query: q, Cities: cities.Search(q)})
}

func (s *Server) handlePopularCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, citiesResponse{Cities: cities.Popular()})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, errStoreDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	favs, err := s.store.ListFavorites()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, citiesResponse{Cities: favs})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, errStoreDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	c, ok := decodeCity(w, r)
	if !ok {
		return
	}
	if err := s.store.AddFavorite(c); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

type toggleResponse struct {
	City     models.City `json:"city"`
	Favorite bool        `json:"favorite"`
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, errStoreDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	c, ok := decodeCity(w, r)
	if !ok {
		return
	}
	fav, err := s.store.ToggleFavorite(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{City: c, Favorite: fav})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, errStoreDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if name == "" || country == "" {
		http.Error(w, "name and country are required", http.StatusBadRequest)
		return
	}
	removed, err := s.store.RemoveFavorite(name, country)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "favorite not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeCity reads a city from the request body. Coordinates and country
// are filled from the catalogue when the client sends only a name.
func decodeCity(w http.ResponseWriter, r *http.Request) (models.City, bool) {
	var c models.City
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&c); err != nil {
		http.Error(w, "invalid city: "+err.Error(), http.StatusBadRequest)
		return c, false
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		http.Error(w, "city name is required", http.StatusBadRequest)
		return c, false
	}
	if known, ok := cities.Lookup(c.Name, c.Country); ok && (c.Coord == models.Coordinates{}) {
		c = known
	}
	if c.Country == "" {
		http.Error(w, "unknown city; country and coordinates are required", http.StatusBadRequest)
		return c, false
	}
	c.Popular = false
	return c, true
}
