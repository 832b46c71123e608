package tour

import (
	"context"
	"fmt"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

func runReferences(ctx context.Context, env *Env) error {
	film, err := filmBySequel(ctx, env.Store, 4)
	if err != nil {
		return err
	}
	alice, err := env.Store.CreateUser(ctx, "Alice")
	if err != nil {
		return err
	}
	bob, err := env.Store.CreateUser(ctx, "Bob")
	if err != nil {
		return err
	}
	inputs := []storage.RatingInput{
		{Value: 9, FilmID: film.ID, UserID: alice},
		{Value: 7, FilmID: film.ID, UserID: bob, SecondUserID: &alice},
	}
	for _, input := range inputs {
		if _, err := env.Store.CreateRating(ctx, input); err != nil {
			return err
		}
	}

	ratings, err := env.Store.ListFilmRatings(ctx, film.ID)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(ratings))
	for _, rating := range ratings {
		detail, err := env.Store.GetRatingDetail(ctx, rating.ID)
		if err != nil {
			return err
		}
		second := "-"
		if detail.SecondUserName != nil {
			second = *detail.SecondUserName
		}
		rows = append(rows, []string{itoa(detail.ID), detail.FilmName, detail.UserName, second, itoa(detail.Value)})
	}
	return env.table([]string{"rating", "film", "user", "second_user", "value"}, rows)
}

var filmCast = map[int][][2]string{
	4: {{"Mark", "Hamill"}, {"Carrie", "Fisher"}, {"Harrison", "Ford"}},
	5: {{"Mark", "Hamill"}, {"Carrie", "Fisher"}},
}

func runManyToMany(ctx context.Context, env *Env) error {
	rows := [][]string{}
	for _, sequelID := range []int{4, 5} {
		film, err := filmBySequel(ctx, env.Store, sequelID)
		if err != nil {
			return err
		}
		linked, err := env.Store.ListFilmActors(ctx, film.ID)
		if err != nil {
			return err
		}
		onFilm := make(map[int64]bool, len(linked))
		for _, actor := range linked {
			onFilm[actor.ID] = true
		}
		for _, name := range filmCast[sequelID] {
			id, err := ensureActor(ctx, env.Store, name[0], name[1])
			if err != nil {
				return err
			}
			if onFilm[id] {
				continue
			}
			if err := env.Store.AddFilmActor(ctx, film.ID, id); err != nil {
				return err
			}
			onFilm[id] = true
		}
		actors, err := env.Store.ListFilmActors(ctx, film.ID)
		if err != nil {
			return err
		}
		for _, actor := range actors {
			rows = append(rows, []string{film.Name, fmt.Sprintf("%s %s", actor.Firstname, actor.Lastname)})
		}
	}
	return env.table([]string{"film", "actor"}, rows)
}

func runParentChild(ctx context.Context, env *Env) error {
	ids := make(map[string]int64)
	for _, name := range []string{"root", "left", "right", "leaf"} {
		id, err := env.Store.CreateNode(ctx, name)
		if err != nil {
			return err
		}
		ids[name] = id
	}
	for _, link := range [][2]string{{"root", "left"}, {"root", "right"}, {"left", "leaf"}, {"right", "leaf"}} {
		if err := env.Store.LinkNodes(ctx, ids[link[0]], ids[link[1]]); err != nil {
			return err
		}
	}

	rows := [][]string{}
	for _, name := range []string{"root", "left", "leaf"} {
		children, err := env.Store.ListNodeChildren(ctx, ids[name])
		if err != nil {
			return err
		}
		parents, err := env.Store.ListNodeParents(ctx, ids[name])
		if err != nil {
			return err
		}
		rows = append(rows, []string{name, nodeNames(parents), nodeNames(children)})
	}
	return env.table([]string{"node", "parents", "children"}, rows)
}

func nodeNames(nodes []storage.Node) string {
	if len(nodes) == 0 {
		return "-"
	}
	out := ""
	for i, node := range nodes {
		if i > 0 {
			out += ", "
		}
		out += node.Name
	}
	return out
}
