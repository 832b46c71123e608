package sqlstore

import (
	"context"
	"fmt"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// BatchCreateCities inserts one city per name inside a single transaction
// and returns the generated ids in input order. Each row is its own INSERT
// statement; a failure on any row rolls back the batch.
func (s *Store) BatchCreateCities(ctx context.Context, names []string) ([]int64, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	normalized := make([]string, len(names))
	for i, name := range names {
		value, err := storage.NormalizeName(fmt.Sprintf("city name %d", i), name)
		if err != nil {
			return nil, err
		}
		normalized[i] = value
	}
	if len(normalized) == 0 {
		return []int64{}, nil
	}

	ids := make([]int64, 0, len(normalized))
	err := s.InTx(ctx, func(tx *Store) error {
		for _, name := range normalized {
			id, err := tx.insertReturningID(ctx, "batch create cities", `INSERT INTO cities (name) VALUES (?)`, name)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListCities returns every city ordered by id.
func (s *Store) ListCities(ctx context.Context) ([]storage.City, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, `SELECT id, name FROM cities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []storage.City
	for rows.Next() {
		var city storage.City
		if err := rows.Scan(&city.ID, &city.Name); err != nil {
			return nil, fmt.Errorf("list cities: %w", err)
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cities, nil
}
