// Package cities provides the built-in city catalogue and search.
package cities

import (
	"strings"
	"unicode/utf8"

	"github.com/lolweather/lolweather/internal/models"
)

const (
	MinQueryLength = 2
	MaxResults     = 20
)

// Search returns catalogue cities whose name, country code or country name
// contains query, ignoring case. Queries shorter than MinQueryLength runes
// return no results.
func Search(query string) []models.City {
	query = strings.TrimSpace(query)
	results := []models.City{}
	if utf8.RuneCountInString(query) < MinQueryLength {
		return results
	}

	q := strings.ToLower(query)
	for _, e := range catalogue {
		if len(results) == MaxResults {
			break
		}
		c := e.city()
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.EqualFold(c.Country, query) ||
			strings.Contains(strings.ToLower(c.CountryName), q) {
			results = append(results, c)
		}
	}
	return results
}

// Popular returns the featured cities in catalogue order.
func Popular() []models.City {
	var out []models.City
	for _, e := range catalogue {
		if e.popular {
			out = append(out, e.city())
		}
	}
	return out
}

// Lookup finds a catalogue city by exact name, ignoring case. When country
// is empty the first match wins.
func Lookup(name, country string) (models.City, bool) {
	for _, e := range catalogue {
		if !strings.EqualFold(e.name, name) {
			continue
		}
		if country != "" && !strings.EqualFold(e.country, country) {
			continue
		}
		return e.city(), true
	}
	return models.City{}, false
}
