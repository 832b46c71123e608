package tour

import (
	"context"
	"fmt"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

func runSchema(ctx context.Context, env *Env) error {
	tables, err := env.Store.ListTables(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(tables))
	for _, table := range tables {
		rows = append(rows, []string{table})
	}
	return env.table([]string{"table"}, rows)
}

func runCreate(ctx context.Context, env *Env) error {
	id, created, err := ensureFilm(ctx, env.Store, lastJedi)
	if err != nil {
		return err
	}
	if !created {
		env.linef(SkippedKey, fmt.Sprintf("sequel_id %d already present", lastJedi.SequelID))
	}
	env.linef(CreatedIDKey, id)
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	page, err := env.Store.ListFilms(ctx, storage.FilmQuery{OrderBy: "id"})
	if err != nil {
		return err
	}
	return env.filmTable(page.Films)
}

func runRead(ctx context.Context, env *Env) error {
	if err := ensureLastJedi(ctx, env.Store); err != nil {
		return err
	}
	page, err := env.Store.ListFilms(ctx, storage.FilmQuery{Filter: "sequel_id = 8"})
	if err != nil {
		return err
	}
	return env.filmTable(page.Films)
}

func runProjection(ctx context.Context, env *Env) error {
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	credits, err := env.Store.ListFilmCredits(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(credits))
	for _, credit := range credits {
		rows = append(rows, []string{credit.Name, credit.Director})
	}
	return env.table([]string{"name", "director"}, rows)
}

func runDistinct(ctx context.Context, env *Env) error {
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	directors, err := env.Store.ListDirectors(ctx, "sequel_id < 5")
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(directors))
	for _, director := range directors {
		rows = append(rows, []string{director})
	}
	return env.table([]string{"director"}, rows)
}

func runUpdate(ctx context.Context, env *Env) error {
	if err := ensureLastJedi(ctx, env.Store); err != nil {
		return err
	}
	name := "Episode VIII - The Last Jedi"
	affected, err := env.Store.UpdateFilms(ctx, "sequel_id = 8", storage.FilmUpdate{Name: &name})
	if err != nil {
		return err
	}
	env.linef(RowsAffectedKey, affected)
	return nil
}

func runUpdateExpression(ctx context.Context, env *Env) error {
	if err := ensureLastJedi(ctx, env.Store); err != nil {
		return err
	}
	affected, err := env.Store.ShiftSequelIDs(ctx, "sequel_id = 8", 1)
	if err != nil {
		return err
	}
	env.linef(RowsAffectedKey, affected)
	page, err := env.Store.ListFilms(ctx, storage.FilmQuery{Filter: "sequel_id = 9"})
	if err != nil {
		return err
	}
	return env.filmTable(page.Films)
}

func runDelete(ctx context.Context, env *Env) error {
	affected, err := env.Store.DeleteFilms(ctx, "sequel_id = 8")
	if err != nil {
		return err
	}
	env.linef(RowsAffectedKey, affected)
	return nil
}

func runCount(ctx context.Context, env *Env) error {
	count, err := env.Store.CountFilms(ctx, "sequel_id = 8")
	if err != nil {
		return err
	}
	env.linef(CountKey, count)
	return nil
}

func runOrderBy(ctx context.Context, env *Env) error {
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	page, err := env.Store.ListFilms(ctx, storage.FilmQuery{OrderBy: "sequel_id asc"})
	if err != nil {
		return err
	}
	return env.filmTable(page.Films)
}
