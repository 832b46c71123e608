package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// CreateUser inserts one user and returns its id.
func (s *Store) CreateUser(ctx context.Context, name string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	name, err := storage.NormalizeName("user name", name)
	if err != nil {
		return 0, err
	}
	return s.insertReturningID(ctx, "create user", `INSERT INTO users (name) VALUES (?)`, name)
}

// CreateRating inserts one rating. The film, user and optional second user
// must already exist.
func (s *Store) CreateRating(ctx context.Context, input storage.RatingInput) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if err := validateID("film id", input.FilmID); err != nil {
		return 0, err
	}
	if err := validateID("user id", input.UserID); err != nil {
		return 0, err
	}
	var secondUser sql.NullInt64
	if input.SecondUserID != nil {
		if err := validateID("second user id", *input.SecondUserID); err != nil {
			return 0, err
		}
		secondUser = sql.NullInt64{Int64: *input.SecondUserID, Valid: true}
	}
	return s.insertReturningID(
		ctx,
		"create rating",
		`INSERT INTO user_ratings (value, film_id, user_id, second_user_id) VALUES (?, ?, ?, ?)`,
		input.Value,
		input.FilmID,
		input.UserID,
		secondUser,
	)
}

// ListFilmRatings returns the ratings that reference filmID.
func (s *Store) ListFilmRatings(ctx context.Context, filmID int64) ([]storage.Rating, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := validateID("film id", filmID); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		s.rebind(`SELECT id, value, film_id, user_id, second_user_id
		   FROM user_ratings
		  WHERE film_id = ?
		  ORDER BY id`),
		filmID,
	)
	if err != nil {
		return nil, fmt.Errorf("list film ratings: %w", err)
	}
	defer rows.Close()

	var ratings []storage.Rating
	for rows.Next() {
		var rating storage.Rating
		var secondUser sql.NullInt64
		if err := rows.Scan(&rating.ID, &rating.Value, &rating.FilmID, &rating.UserID, &secondUser); err != nil {
			return nil, fmt.Errorf("list film ratings: %w", err)
		}
		if secondUser.Valid {
			rating.SecondUserID = &secondUser.Int64
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list film ratings: %w", err)
	}
	return ratings, nil
}

// GetRatingDetail returns one rating with its film and users resolved.
func (s *Store) GetRatingDetail(ctx context.Context, id int64) (storage.RatingDetail, error) {
	if err := s.ready(ctx); err != nil {
		return storage.RatingDetail{}, err
	}
	if err := validateID("rating id", id); err != nil {
		return storage.RatingDetail{}, err
	}

	var (
		detail         storage.RatingDetail
		secondUserID   sql.NullInt64
		secondUserName sql.NullString
	)
	err := s.q.QueryRowContext(
		ctx,
		s.rebind(`SELECT r.id, r.value, r.film_id, r.user_id, r.second_user_id,
		        f.name, u.name, su.name
		   FROM user_ratings AS r
		  INNER JOIN star_wars_films AS f ON f.id = r.film_id
		  INNER JOIN users AS u ON u.id = r.user_id
		   LEFT JOIN users AS su ON su.id = r.second_user_id
		  WHERE r.id = ?`),
		id,
	).Scan(
		&detail.ID,
		&detail.Value,
		&detail.FilmID,
		&detail.UserID,
		&secondUserID,
		&detail.FilmName,
		&detail.UserName,
		&secondUserName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RatingDetail{}, storage.ErrNotFound
		}
		return storage.RatingDetail{}, fmt.Errorf("get rating detail: %w", err)
	}
	if secondUserID.Valid {
		detail.SecondUserID = &secondUserID.Int64
	}
	if secondUserName.Valid {
		detail.SecondUserName = &secondUserName.String
	}
	return detail, nil
}
