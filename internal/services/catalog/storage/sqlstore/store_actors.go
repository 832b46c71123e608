package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// CreateActor inserts one actor and returns its id.
func (s *Store) CreateActor(ctx context.Context, firstname, lastname string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	firstname, err := storage.NormalizeName("firstname", firstname)
	if err != nil {
		return 0, err
	}
	lastname, err = storage.NormalizeName("lastname", lastname)
	if err != nil {
		return 0, err
	}
	return s.insertReturningID(
		ctx,
		"create actor",
		`INSERT INTO actors (firstname, lastname) VALUES (?, ?)`,
		firstname,
		lastname,
	)
}

// FindActor returns the lowest id of the actor with the given name.
func (s *Store) FindActor(ctx context.Context, firstname, lastname string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var id int64
	err := s.q.QueryRowContext(
		ctx,
		s.rebind(`SELECT id FROM actors WHERE firstname = ? AND lastname = ? ORDER BY id LIMIT 1`),
		strings.TrimSpace(firstname),
		strings.TrimSpace(lastname),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("find actor: %w", err)
	}
	return id, nil
}

// AddFilmActor links an actor to a film.
func (s *Store) AddFilmActor(ctx context.Context, filmID, actorID int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := validateID("film id", filmID); err != nil {
		return err
	}
	if err := validateID("actor id", actorID); err != nil {
		return err
	}
	if _, err := s.q.ExecContext(
		ctx,
		s.rebind(`INSERT INTO star_wars_film_actors (star_wars_film_id, actor_id) VALUES (?, ?)`),
		filmID,
		actorID,
	); err != nil {
		return s.classify("add film actor", err)
	}
	return nil
}

// ListFilmActors returns the actors linked to filmID.
func (s *Store) ListFilmActors(ctx context.Context, filmID int64) ([]storage.Actor, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := validateID("film id", filmID); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		s.rebind(`SELECT a.id, a.firstname, a.lastname
		   FROM actors AS a
		  INNER JOIN star_wars_film_actors AS fa ON fa.actor_id = a.id
		  WHERE fa.star_wars_film_id = ?
		  ORDER BY a.id`),
		filmID,
	)
	if err != nil {
		return nil, fmt.Errorf("list film actors: %w", err)
	}
	defer rows.Close()

	var actors []storage.Actor
	for rows.Next() {
		var actor storage.Actor
		if err := rows.Scan(&actor.ID, &actor.Firstname, &actor.Lastname); err != nil {
			return nil, fmt.Errorf("list film actors: %w", err)
		}
		actors = append(actors, actor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list film actors: %w", err)
	}
	return actors, nil
}
