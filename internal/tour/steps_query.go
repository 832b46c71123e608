package tour

import (
	"context"
	"strconv"
)

func runGroupBy(ctx context.Context, env *Env) error {
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	stats, err := env.Store.ListDirectorStats(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(stats))
	for _, row := range stats {
		rows = append(rows, []string{
			row.Director,
			itoa(row.Films),
			itoa(row.SumSequel),
			itoa(row.MinSequel),
			itoa(row.MaxSequel),
			strconv.FormatFloat(row.AvgSequel, 'f', 2, 64),
		})
	}
	return env.table([]string{"director", "count", "sum", "min", "max", "avg"}, rows)
}

func runJoin(ctx context.Context, env *Env) error {
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	if err := ensurePlayers(ctx, env.Store); err != nil {
		return err
	}
	counts, err := env.Store.CountPlayersByFilm(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(counts))
	for _, count := range counts {
		rows = append(rows, []string{count.FilmName, itoa(count.Players)})
	}
	return env.table([]string{"film", "players"}, rows)
}

func runAlias(ctx context.Context, env *Env) error {
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	films, err := env.Store.ListFilmsAs(ctx, "ft1")
	if err != nil {
		return err
	}
	return env.filmTable(films)
}

func runSelfJoin(ctx context.Context, env *Env) error {
	if err := ensureCatalog(ctx, env.Store); err != nil {
		return err
	}
	pairs, err := env.Store.ListFilmSequels(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair.Original, pair.Sequel})
	}
	return env.table([]string{"name", "sequel_name"}, rows)
}
