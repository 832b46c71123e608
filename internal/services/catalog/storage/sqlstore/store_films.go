package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/sqltour/internal/platform/filter"
	"github.com/louisbranch/sqltour/internal/platform/pagination"
	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

var filmFields = filter.Fields{
	"id":        {Column: "id", Type: filter.Int},
	"sequel_id": {Column: "sequel_id", Type: filter.Int},
	"name":      {Column: "name", Type: filter.String},
	"director":  {Column: "director", Type: filter.String},
}

var filmPageSize = pagination.PageSizeConfig{Default: 50, Max: 200}

var filmOrderBy = pagination.OrderByConfig{
	Default: "sequel_id",
	Allowed: map[string]string{
		"sequel_id":      "sequel_id ASC, id ASC",
		"sequel_id desc": "sequel_id DESC, id ASC",
		"name":           "name ASC, id ASC",
		"name desc":      "name DESC, id ASC",
		"id":             "id ASC",
	},
}

func normalizeFilmInput(input storage.FilmInput) (storage.FilmInput, error) {
	name, err := storage.NormalizeName("name", input.Name)
	if err != nil {
		return storage.FilmInput{}, err
	}
	director, err := storage.NormalizeName("director", input.Director)
	if err != nil {
		return storage.FilmInput{}, err
	}
	return storage.FilmInput{SequelID: input.SequelID, Name: name, Director: director}, nil
}

// CreateFilm inserts one film and returns its generated id.
func (s *Store) CreateFilm(ctx context.Context, input storage.FilmInput) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	input, err := normalizeFilmInput(input)
	if err != nil {
		return 0, err
	}
	return s.insertReturningID(
		ctx,
		"create film",
		`INSERT INTO star_wars_films (sequel_id, name, director) VALUES (?, ?, ?)`,
		input.SequelID,
		input.Name,
		input.Director,
	)
}

// CreateFilmWithID inserts one film under a caller-chosen id, typically one
// drawn from a sequence.
func (s *Store) CreateFilmWithID(ctx context.Context, id int64, input storage.FilmInput) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := validateID("film id", id); err != nil {
		return err
	}
	input, err := normalizeFilmInput(input)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(
		ctx,
		s.rebind(`INSERT INTO star_wars_films (id, sequel_id, name, director) VALUES (?, ?, ?, ?)`),
		id,
		input.SequelID,
		input.Name,
		input.Director,
	)
	if err != nil {
		return s.classify("create film with id", err)
	}
	return nil
}

// GetFilm returns one film by id.
func (s *Store) GetFilm(ctx context.Context, id int64) (storage.Film, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Film{}, err
	}
	if err := validateID("film id", id); err != nil {
		return storage.Film{}, err
	}

	var film storage.Film
	err := s.q.QueryRowContext(
		ctx,
		s.rebind(`SELECT id, sequel_id, name, director FROM star_wars_films WHERE id = ?`),
		id,
	).Scan(&film.ID, &film.SequelID, &film.Name, &film.Director)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Film{}, storage.ErrNotFound
		}
		return storage.Film{}, fmt.Errorf("get film: %w", err)
	}
	return film, nil
}

// ListFilms returns one page of films matching query.
func (s *Store) ListFilms(ctx context.Context, query storage.FilmQuery) (storage.FilmPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.FilmPage{}, err
	}
	cond, err := s.parseFilter(query.Filter, filmFields)
	if err != nil {
		return storage.FilmPage{}, err
	}
	orderBy, err := pagination.NormalizeOrderBy(query.OrderBy, filmOrderBy)
	if err != nil {
		return storage.FilmPage{}, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}
	offset, err := pagination.DecodeOffset(query.PageToken)
	if err != nil {
		return storage.FilmPage{}, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}
	pageSize := pagination.ClampPageSize(query.PageSize, filmPageSize)

	args := append(append([]any{}, cond.Params...), pageSize+1, offset)
	rows, err := s.q.QueryContext(
		ctx,
		s.rebind(`SELECT id, sequel_id, name, director FROM star_wars_films`+cond.Where()+
			` ORDER BY `+orderBy+` LIMIT ? OFFSET ?`),
		args...,
	)
	if err != nil {
		return storage.FilmPage{}, fmt.Errorf("list films: %w", err)
	}
	films, err := scanFilms(rows)
	if err != nil {
		return storage.FilmPage{}, fmt.Errorf("list films: %w", err)
	}

	page := storage.FilmPage{Films: films}
	if len(films) > pageSize {
		page.Films = films[:pageSize]
		page.NextPageToken = pagination.EncodeOffset(offset + pageSize)
	}
	return page, nil
}

// ListFilmCredits returns the name and director of every film.
func (s *Store) ListFilmCredits(ctx context.Context) ([]storage.FilmCredit, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, `SELECT name, director FROM star_wars_films ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list film credits: %w", err)
	}
	defer rows.Close()

	var credits []storage.FilmCredit
	for rows.Next() {
		var credit storage.FilmCredit
		if err := rows.Scan(&credit.Name, &credit.Director); err != nil {
			return nil, fmt.Errorf("list film credits: %w", err)
		}
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list film credits: %w", err)
	}
	return credits, nil
}

// ListDirectors returns the distinct directors of films matching filter.
func (s *Store) ListDirectors(ctx context.Context, filterStr string) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	cond, err := s.parseFilter(filterStr, filmFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		s.rebind(`SELECT DISTINCT director FROM star_wars_films`+cond.Where()+` ORDER BY director`),
		cond.Params...,
	)
	if err != nil {
		return nil, fmt.Errorf("list directors: %w", err)
	}
	defer rows.Close()

	var directors []string
	for rows.Next() {
		var director string
		if err := rows.Scan(&director); err != nil {
			return nil, fmt.Errorf("list directors: %w", err)
		}
		directors = append(directors, director)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list directors: %w", err)
	}
	return directors, nil
}

// UpdateFilms overwrites the set fields of every film matching filter and
// returns the number of rows changed.
func (s *Store) UpdateFilms(ctx context.Context, filterStr string, update storage.FilmUpdate) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	var (
		sets []string
		args []any
	)
	if update.Name != nil {
		name, err := storage.NormalizeName("name", *update.Name)
		if err != nil {
			return 0, err
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if update.Director != nil {
		director, err := storage.NormalizeName("director", *update.Director)
		if err != nil {
			return 0, err
		}
		sets = append(sets, "director = ?")
		args = append(args, director)
	}
	if len(sets) == 0 {
		return 0, fmt.Errorf("%w: update has no fields", storage.ErrInvalidArgument)
	}

	cond, err := s.parseFilter(filterStr, filmFields)
	if err != nil {
		return 0, err
	}
	args = append(args, cond.Params...)
	return s.execAffected(
		ctx,
		"update films",
		`UPDATE star_wars_films SET `+strings.Join(sets, ", ")+cond.Where(),
		args...,
	)
}

// ShiftSequelIDs adds delta to the sequel id of every film matching filter
// in a single UPDATE expression.
func (s *Store) ShiftSequelIDs(ctx context.Context, filterStr string, delta int) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	cond, err := s.parseFilter(filterStr, filmFields)
	if err != nil {
		return 0, err
	}
	args := append([]any{delta}, cond.Params...)
	return s.execAffected(
		ctx,
		"shift sequel ids",
		`UPDATE star_wars_films SET sequel_id = sequel_id + ?`+cond.Where(),
		args...,
	)
}

// DeleteFilms removes every film matching filter. An empty filter is
// rejected so a typo cannot wipe the table.
func (s *Store) DeleteFilms(ctx context.Context, filterStr string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if strings.TrimSpace(filterStr) == "" {
		return 0, fmt.Errorf("%w: delete requires a filter", storage.ErrInvalidArgument)
	}
	cond, err := s.parseFilter(filterStr, filmFields)
	if err != nil {
		return 0, err
	}
	return s.execAffected(ctx, "delete films", `DELETE FROM star_wars_films`+cond.Where(), cond.Params...)
}

// CountFilms counts films matching filter.
func (s *Store) CountFilms(ctx context.Context, filterStr string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	cond, err := s.parseFilter(filterStr, filmFields)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := s.q.QueryRowContext(
		ctx,
		s.rebind(`SELECT COUNT(*) FROM star_wars_films`+cond.Where()),
		cond.Params...,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count films: %w", err)
	}
	return count, nil
}

// ListDirectorStats groups films by director and aggregates their sequel ids.
func (s *Store) ListDirectorStats(ctx context.Context) ([]storage.DirectorStats, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		`SELECT director,
		        COUNT(sequel_id),
		        COALESCE(SUM(sequel_id), 0),
		        MIN(sequel_id),
		        MAX(sequel_id),
		        CAST(AVG(sequel_id) AS DOUBLE PRECISION)
		   FROM star_wars_films
		  GROUP BY director
		  ORDER BY director`,
	)
	if err != nil {
		return nil, fmt.Errorf("list director stats: %w", err)
	}
	defer rows.Close()

	var stats []storage.DirectorStats
	for rows.Next() {
		var row storage.DirectorStats
		if err := rows.Scan(
			&row.Director,
			&row.Films,
			&row.SumSequel,
			&row.MinSequel,
			&row.MaxSequel,
			&row.AvgSequel,
		); err != nil {
			return nil, fmt.Errorf("list director stats: %w", err)
		}
		stats = append(stats, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list director stats: %w", err)
	}
	return stats, nil
}

// ListFilmsAs selects every film through the table alias.
func (s *Store) ListFilmsAs(ctx context.Context, alias string) ([]storage.Film, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	quoted, err := s.dialect.QuoteIdent(alias)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}
	rows, err := s.q.QueryContext(
		ctx,
		fmt.Sprintf(
			`SELECT %[1]s.id, %[1]s.sequel_id, %[1]s.name, %[1]s.director FROM star_wars_films AS %[1]s ORDER BY %[1]s.id`,
			quoted,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("list films as %s: %w", alias, err)
	}
	films, err := scanFilms(rows)
	if err != nil {
		return nil, fmt.Errorf("list films as %s: %w", alias, err)
	}
	return films, nil
}

// ListFilmSequels self-joins films, pairing each film with the film whose id
// equals its sequel id.
func (s *Store) ListFilmSequels(ctx context.Context) ([]storage.FilmSequelPair, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		`SELECT star_wars_films.name, "sequel".name
		   FROM star_wars_films
		  INNER JOIN star_wars_films AS "sequel" ON star_wars_films.sequel_id = "sequel".id
		  ORDER BY star_wars_films.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list film sequels: %w", err)
	}
	defer rows.Close()

	var pairs []storage.FilmSequelPair
	for rows.Next() {
		var pair storage.FilmSequelPair
		if err := rows.Scan(&pair.Original, &pair.Sequel); err != nil {
			return nil, fmt.Errorf("list film sequels: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list film sequels: %w", err)
	}
	return pairs, nil
}

func (s *Store) execAffected(ctx context.Context, op, query string, args ...any) (int64, error) {
	result, err := s.q.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, s.classify(op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return affected, nil
}

func scanFilms(rows *sql.Rows) ([]storage.Film, error) {
	defer rows.Close()

	var films []storage.Film
	for rows.Next() {
		var film storage.Film
		if err := rows.Scan(&film.ID, &film.SequelID, &film.Name, &film.Director); err != nil {
			return nil, err
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return films, nil
}
