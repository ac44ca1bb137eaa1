package store

import (
	"fmt"
	"time"

	"github.com/lolweather/lolweather/internal/models"
)

// AddFavorite stores a favourite city. Re-adding an existing city keeps its
// original position.
func (s *Store) AddFavorite(c models.City) error {
	_, err := s.db.Exec(`
		INSERT INTO favorite_cities (name, country, latitude, longitude, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name, country) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`, c.Name, c.Country, c.Coord.Lat, c.Coord.Lon, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add favorite %s: %w", c.Name, err)
	}
	return nil
}

// RemoveFavorite deletes a favourite city. It reports whether a row was removed.
func (s *Store) RemoveFavorite(name, country string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM favorite_cities WHERE name = ? AND country = ?`, name, country)
	if err != nil {
		return false, fmt.Errorf("remove favorite %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) IsFavorite(name, country string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM favorite_cities WHERE name = ? AND country = ?`, name, country).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ToggleFavorite adds the city if absent and removes it otherwise. It returns
// the new favourite state.
func (s *Store) ToggleFavorite(c models.City) (bool, error) {
	fav, err := s.IsFavorite(c.Name, c.Country)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	if fav {
		if _, err := s.RemoveFavorite(c.Name, c.Country); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.AddFavorite(c); err != nil {
		return false, err
	}
	return true, nil
}

// ListFavorites returns favourites in the order they were added.
func (s *Store) ListFavorites() ([]models.City, error) {
	rows, err := s.db.Query(`
		SELECT name, country, latitude, longitude
		FROM favorite_cities
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []models.City{}
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.Name, &c.Country, &c.Coord.Lat, &c.Coord.Lon); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}
