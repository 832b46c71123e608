// Package storage defines the film catalog entities and persistence contracts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotFound indicates a requested catalog record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidReference indicates a foreign key points at a missing row.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidArgument indicates input failed validation before reaching SQL.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NameMaxLength bounds every VARCHAR(50) column.
const NameMaxLength = 50

// Film is one row of star_wars_films.
type Film struct {
	ID       int64
	SequelID int
	Name     string
	Director string
}

// FilmInput carries the writable film columns.
type FilmInput struct {
	SequelID int
	Name     string
	Director string
}

// FilmUpdate lists film columns to overwrite. Nil fields are left unchanged.
type FilmUpdate struct {
	Name     *string
	Director *string
}

// FilmQuery selects films.
type FilmQuery struct {
	// Filter is an AIP-160 expression over id, sequel_id, name and director.
	Filter string
	// OrderBy is one of sequel_id, name, each optionally suffixed by desc.
	OrderBy   string
	PageSize  int
	PageToken string
}

// FilmPage is one page of films.
type FilmPage struct {
	Films         []Film
	NextPageToken string
}

// FilmCredit is the name and director projection of a film.
type FilmCredit struct {
	Name     string
	Director string
}

// DirectorStats aggregates sequel ids per director.
type DirectorStats struct {
	Director  string
	Films     int64
	SumSequel int64
	MinSequel int64
	MaxSequel int64
	AvgSequel float64
}

// Player is one row of players, keyed by sequel id rather than a surrogate id.
type Player struct {
	SequelID int
	Name     string
}

// FilmPlayerCount is the number of players joined to one film.
type FilmPlayerCount struct {
	FilmName string
	Players  int64
}

// FilmSequelPair names a film and the film its sequel id points at.
type FilmSequelPair struct {
	Original string
	Sequel   string
}

// City is one row of cities.
type City struct {
	ID   int64
	Name string
}

// User is one row of users.
type User struct {
	ID   int64
	Name string
}

// Rating is one row of user_ratings.
type Rating struct {
	ID           int64
	Value        int64
	FilmID       int64
	UserID       int64
	SecondUserID *int64
}

// RatingInput carries the writable rating columns.
type RatingInput struct {
	Value        int64
	FilmID       int64
	UserID       int64
	SecondUserID *int64
}

// RatingDetail is a rating with its references resolved.
type RatingDetail struct {
	Rating
	FilmName       string
	UserName       string
	SecondUserName *string
}

// Actor is one row of actors.
type Actor struct {
	ID        int64
	Firstname string
	Lastname  string
}

// Node is one row of nodes. Nodes link to each other through node_to_nodes.
type Node struct {
	ID   int64
	Name string
}

// Sequence describes a named counter.
type Sequence struct {
	Name      string
	Start     int64
	Increment int64
}

// FilmStore persists films and answers the film queries.
type FilmStore interface {
	CreateFilm(ctx context.Context, input FilmInput) (int64, error)
	CreateFilmWithID(ctx context.Context, id int64, input FilmInput) error
	GetFilm(ctx context.Context, id int64) (Film, error)
	ListFilms(ctx context.Context, query FilmQuery) (FilmPage, error)
	ListFilmCredits(ctx context.Context) ([]FilmCredit, error)
	ListDirectors(ctx context.Context, filter string) ([]string, error)
	UpdateFilms(ctx context.Context, filter string, update FilmUpdate) (int64, error)
	ShiftSequelIDs(ctx context.Context, filter string, delta int) (int64, error)
	DeleteFilms(ctx context.Context, filter string) (int64, error)
	CountFilms(ctx context.Context, filter string) (int64, error)
	ListDirectorStats(ctx context.Context) ([]DirectorStats, error)
	ListFilmsAs(ctx context.Context, alias string) ([]Film, error)
	ListFilmSequels(ctx context.Context) ([]FilmSequelPair, error)
}

// PlayerStore persists players and joins them to films.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, player Player) error
	HasPlayer(ctx context.Context, sequelID int) (bool, error)
	CountPlayersByFilm(ctx context.Context) ([]FilmPlayerCount, error)
}

// CityStore persists cities.
type CityStore interface {
	BatchCreateCities(ctx context.Context, names []string) ([]int64, error)
	ListCities(ctx context.Context) ([]City, error)
}

// RatingStore persists users and their film ratings.
type RatingStore interface {
	CreateUser(ctx context.Context, name string) (int64, error)
	CreateRating(ctx context.Context, input RatingInput) (int64, error)
	ListFilmRatings(ctx context.Context, filmID int64) ([]Rating, error)
	GetRatingDetail(ctx context.Context, id int64) (RatingDetail, error)
}

// ActorStore persists actors and the films they appear in.
type ActorStore interface {
	CreateActor(ctx context.Context, firstname, lastname string) (int64, error)
	FindActor(ctx context.Context, firstname, lastname string) (int64, error)
	AddFilmActor(ctx context.Context, filmID, actorID int64) error
	ListFilmActors(ctx context.Context, filmID int64) ([]Actor, error)
}

// NodeStore persists a parent/child graph of nodes.
type NodeStore interface {
	CreateNode(ctx context.Context, name string) (int64, error)
	LinkNodes(ctx context.Context, parentID, childID int64) error
	ListNodeChildren(ctx context.Context, id int64) ([]Node, error)
	ListNodeParents(ctx context.Context, id int64) ([]Node, error)
}

// SchemaStore manages schemas and sequences.
type SchemaStore interface {
	ListTables(ctx context.Context) ([]string, error)
	CreateSchema(ctx context.Context, name string) error
	DropSchema(ctx context.Context, name string) error
	ListSchemas(ctx context.Context) ([]string, error)
	CreateSequence(ctx context.Context, seq Sequence) error
	NextSequenceValue(ctx context.Context, name string) (int64, error)
	DropSequence(ctx context.Context, name string) error
}

// CatalogStore is the full catalog surface.
type CatalogStore interface {
	FilmStore
	PlayerStore
	CityStore
	RatingStore
	ActorStore
	NodeStore
	SchemaStore
}

// NormalizeName trims value and enforces the VARCHAR(50) bound.
func NormalizeName(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	if utf8.RuneCountInString(value) > NameMaxLength {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidArgument, field, NameMaxLength)
	}
	return value, nil
}
