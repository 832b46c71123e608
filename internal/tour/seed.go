package tour

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// lastJedi is the film the script inserts, reads, renames and shifts.
var lastJedi = storage.FilmInput{SequelID: 8, Name: "The Last Jedi", Director: "Rian Johnson"}

// seedFilms give the joins, aliases and group-bys something to return.
var seedFilms = []storage.FilmInput{
	{SequelID: 4, Name: "A New Hope", Director: "George Lucas"},
	{SequelID: 5, Name: "The Empire Strikes Back", Director: "Irvin Kershner"},
	{SequelID: 6, Name: "Return of the Jedi", Director: "Richard Marquand"},
	{SequelID: 1, Name: "The Phantom Menace", Director: "George Lucas"},
	{SequelID: 2, Name: "Attack of the Clones", Director: "George Lucas"},
	{SequelID: 3, Name: "Revenge of the Sith", Director: "George Lucas"},
}

var seedPlayers = []storage.Player{
	{SequelID: 4, Name: "Luke Skywalker"},
	{SequelID: 5, Name: "Han Solo"},
	{SequelID: 8, Name: "Rey"},
	{SequelID: 42, Name: "Jar Jar Binks"},
}

// ensureFilm returns the id of the film holding input's sequel id, creating
// it when the slot is free.
func ensureFilm(ctx context.Context, store storage.FilmStore, input storage.FilmInput) (int64, bool, error) {
	page, err := store.ListFilms(ctx, storage.FilmQuery{Filter: fmt.Sprintf("sequel_id = %d", input.SequelID), PageSize: 1})
	if err != nil {
		return 0, false, err
	}
	if len(page.Films) > 0 {
		return page.Films[0].ID, false, nil
	}
	id, err := store.CreateFilm(ctx, input)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ensureCatalog makes sure the seed films exist.
func ensureCatalog(ctx context.Context, store storage.FilmStore) error {
	for _, input := range seedFilms {
		if _, _, err := ensureFilm(ctx, store, input); err != nil {
			return fmt.Errorf("seed film %q: %w", input.Name, err)
		}
	}
	return nil
}

// ensureLastJedi makes sure episode 8 exists, unless a later step has
// already renamed and shifted it to episode 9.
func ensureLastJedi(ctx context.Context, store storage.FilmStore) error {
	shifted, err := store.CountFilms(ctx, "sequel_id = 9")
	if err != nil {
		return err
	}
	if shifted > 0 {
		return nil
	}
	if _, _, err := ensureFilm(ctx, store, lastJedi); err != nil {
		return fmt.Errorf("seed film %q: %w", lastJedi.Name, err)
	}
	return nil
}

// ensurePlayers inserts the seed players whose sequel id is still free.
// Checking first keeps a PostgreSQL transaction usable on re-runs.
func ensurePlayers(ctx context.Context, store storage.PlayerStore) error {
	for _, player := range seedPlayers {
		exists, err := store.HasPlayer(ctx, player.SequelID)
		if err != nil {
			return fmt.Errorf("seed player %q: %w", player.Name, err)
		}
		if exists {
			continue
		}
		if err := store.CreatePlayer(ctx, player); err != nil {
			return fmt.Errorf("seed player %q: %w", player.Name, err)
		}
	}
	return nil
}

// ensureActor returns the id of the named actor, creating it when missing.
func ensureActor(ctx context.Context, store storage.ActorStore, firstname, lastname string) (int64, error) {
	id, err := store.FindActor(ctx, firstname, lastname)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}
	return store.CreateActor(ctx, firstname, lastname)
}

// filmBySequel returns the film holding sequelID after seeding the catalog.
func filmBySequel(ctx context.Context, store storage.FilmStore, sequelID int) (storage.Film, error) {
	if err := ensureCatalog(ctx, store); err != nil {
		return storage.Film{}, err
	}
	page, err := store.ListFilms(ctx, storage.FilmQuery{Filter: fmt.Sprintf("sequel_id = %d", sequelID), PageSize: 1})
	if err != nil {
		return storage.Film{}, err
	}
	if len(page.Films) == 0 {
		return storage.Film{}, fmt.Errorf("film with sequel id %d: %w", sequelID, storage.ErrNotFound)
	}
	return page.Films[0], nil
}
