package tour

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

const (
	demoSchema   = "my_schema"
	demoSequence = "my_sequence"
)

func runSchemaManagement(ctx context.Context, env *Env) error {
	if err := env.Store.CreateSchema(ctx, demoSchema); err != nil {
		return err
	}
	if err := printSchemas(ctx, env); err != nil {
		return err
	}
	if err := env.Store.DropSchema(ctx, demoSchema); err != nil {
		return err
	}
	return printSchemas(ctx, env)
}

func printSchemas(ctx context.Context, env *Env) error {
	schemas, err := env.Store.ListSchemas(ctx)
	if err != nil {
		return err
	}
	return env.table([]string{"schemas"}, [][]string{{strings.Join(schemas, ", ")}})
}

func runSequence(ctx context.Context, env *Env) error {
	if err := env.Store.CreateSequence(ctx, storage.Sequence{Name: demoSequence, Start: 100}); err != nil {
		return err
	}
	next, err := env.Store.NextSequenceValue(ctx, demoSequence)
	if err != nil {
		return err
	}
	env.linef(NextValueKey, next)

	taken, err := env.Store.CountFilms(ctx, fmt.Sprintf("sequel_id = %d", lastJedi.SequelID))
	if err != nil {
		return err
	}
	if taken > 0 {
		env.linef(SkippedKey, fmt.Sprintf("sequel_id %d already present", lastJedi.SequelID))
	} else {
		if err := env.Store.CreateFilmWithID(ctx, next, lastJedi); err != nil {
			return err
		}
		film, err := env.Store.GetFilm(ctx, next)
		if err != nil {
			return err
		}
		if err := env.filmTable([]storage.Film{film}); err != nil {
			return err
		}
	}
	return env.Store.DropSequence(ctx, demoSequence)
}

var cityNames = []string{"Paris", "Moscow", "Helsinki"}

func runBatchInsert(ctx context.Context, env *Env) error {
	ids, err := env.Store.BatchCreateCities(ctx, cityNames)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(ids))
	for i, id := range ids {
		rows = append(rows, []string{itoa(id), cityNames[i]})
	}
	return env.table([]string{"id", "name"}, rows)
}
