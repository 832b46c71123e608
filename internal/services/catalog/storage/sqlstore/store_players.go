package sqlstore

import (
	"context"
	"fmt"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// CreatePlayer inserts one player. Players are keyed by sequel id.
func (s *Store) CreatePlayer(ctx context.Context, player storage.Player) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name, err := storage.NormalizeName("player name", player.Name)
	if err != nil {
		return err
	}
	if _, err := s.q.ExecContext(
		ctx,
		s.rebind(`INSERT INTO players (sequel_id, name) VALUES (?, ?)`),
		player.SequelID,
		name,
	); err != nil {
		return s.classify("create player", err)
	}
	return nil
}

// HasPlayer reports whether a player holds sequelID.
func (s *Store) HasPlayer(ctx context.Context, sequelID int) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var count int64
	if err := s.q.QueryRowContext(
		ctx,
		s.rebind(`SELECT COUNT(*) FROM players WHERE sequel_id = ?`),
		sequelID,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("has player: %w", err)
	}
	return count > 0, nil
}

// CountPlayersByFilm inner-joins players to films on sequel id and counts
// players per film name.
func (s *Store) CountPlayersByFilm(ctx context.Context) ([]storage.FilmPlayerCount, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		`SELECT star_wars_films.name, COUNT(players.name)
		   FROM players
		  INNER JOIN star_wars_films ON star_wars_films.sequel_id = players.sequel_id
		  GROUP BY star_wars_films.name
		  ORDER BY star_wars_films.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("count players by film: %w", err)
	}
	defer rows.Close()

	var counts []storage.FilmPlayerCount
	for rows.Next() {
		var count storage.FilmPlayerCount
		if err := rows.Scan(&count.FilmName, &count.Players); err != nil {
			return nil, fmt.Errorf("count players by film: %w", err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count players by film: %w", err)
	}
	return counts, nil
}
