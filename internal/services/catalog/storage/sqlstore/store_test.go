package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/louisbranch/sqltour/internal/platform/storage/sqldialect"
	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

var storeCounter atomic.Int64

func TestOpenAppliesMigrations(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	count, err := store.CountFilms(context.Background(), "")
	if err != nil {
		t.Fatalf("count films: %v", err)
	}
	if count != 0 {
		t.Fatalf("film count = %d, want 0", count)
	}
	tables, err := store.ListTables(context.Background())
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	want := "[actors cities node_to_nodes nodes players sequences star_wars_film_actors star_wars_films user_ratings users]"
	if fmt.Sprint(tables) != want {
		t.Fatalf("tables = %v, want %s", tables, want)
	}
	if store.Dialect() != sqldialect.SQLite {
		t.Fatalf("dialect = %q, want sqlite", store.Dialect())
	}
}

func TestOpenRejectsUnreachableDatabase(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Options{
		Dialect: sqldialect.SQLite,
		DSN:     "file:/nonexistent-dir/sqltour.db?mode=ro",
	})
	if err == nil {
		t.Fatal("expected open error for unreachable database")
	}
}

func TestStoreRejectsCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.CreateFilm(ctx, storage.FilmInput{SequelID: 8, Name: "The Last Jedi", Director: "Rian Johnson"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("create film error = %v, want %v", err, context.Canceled)
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if _, err := store.CountFilms(context.Background(), ""); err == nil {
		t.Fatal("expected unconfigured store error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestCreateGetFilmRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	id, err := store.CreateFilm(ctx, storage.FilmInput{SequelID: 8, Name: " The Last Jedi ", Director: "Rian Johnson"})
	if err != nil {
		t.Fatalf("create film: %v", err)
	}
	if id <= 0 {
		t.Fatalf("film id = %d, want positive", id)
	}

	got, err := store.GetFilm(ctx, id)
	if err != nil {
		t.Fatalf("get film: %v", err)
	}
	want := storage.Film{ID: id, SequelID: 8, Name: "The Last Jedi", Director: "Rian Johnson"}
	if got != want {
		t.Fatalf("film = %+v, want %+v", got, want)
	}

	if _, err := store.GetFilm(ctx, id+100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing film error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateFilmRejectsDuplicateSequelID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	input := storage.FilmInput{SequelID: 8, Name: "The Last Jedi", Director: "Rian Johnson"}
	if _, err := store.CreateFilm(ctx, input); err != nil {
		t.Fatalf("create film: %v", err)
	}
	_, err := store.CreateFilm(ctx, input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestCreateFilmValidatesColumns(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	tests := []storage.FilmInput{
		{SequelID: 1, Name: "", Director: "George Lucas"},
		{SequelID: 1, Name: "The Phantom Menace", Director: "  "},
		{SequelID: 1, Name: strings.Repeat("x", storage.NameMaxLength+1), Director: "George Lucas"},
	}
	for _, input := range tests {
		if _, err := store.CreateFilm(context.Background(), input); !errors.Is(err, storage.ErrInvalidArgument) {
			t.Fatalf("create %+v error = %v, want %v", input, err, storage.ErrInvalidArgument)
		}
	}
}

func TestListFilmsFiltersOrdersAndPaginates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedFilms(t, store)
	ctx := context.Background()

	page, err := store.ListFilms(ctx, storage.FilmQuery{Filter: "sequel_id = 8"})
	if err != nil {
		t.Fatalf("list by sequel id: %v", err)
	}
	if len(page.Films) != 1 || page.Films[0].Name != "The Last Jedi" {
		t.Fatalf("filtered films = %+v", page.Films)
	}

	page, err = store.ListFilms(ctx, storage.FilmQuery{OrderBy: "sequel_id asc", PageSize: 2})
	if err != nil {
		t.Fatalf("list page one: %v", err)
	}
	if got := sequelIDs(page.Films); fmt.Sprint(got) != "[1 4]" {
		t.Fatalf("page one sequel ids = %v, want [1 4]", got)
	}
	if page.NextPageToken == "" {
		t.Fatal("expected next page token")
	}

	page, err = store.ListFilms(ctx, storage.FilmQuery{OrderBy: "sequel_id", PageSize: 2, PageToken: page.NextPageToken})
	if err != nil {
		t.Fatalf("list page two: %v", err)
	}
	if got := sequelIDs(page.Films); fmt.Sprint(got) != "[5 6]" {
		t.Fatalf("page two sequel ids = %v, want [5 6]", got)
	}

	page, err = store.ListFilms(ctx, storage.FilmQuery{OrderBy: "sequel_id desc"})
	if err != nil {
		t.Fatalf("list descending: %v", err)
	}
	if got := sequelIDs(page.Films); fmt.Sprint(got) != "[8 6 5 4 1]" {
		t.Fatalf("descending sequel ids = %v", got)
	}
	if page.NextPageToken != "" {
		t.Fatalf("expected last page, got token %q", page.NextPageToken)
	}
}

func TestListFilmsRejectsBadInput(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, query := range []storage.FilmQuery{
		{Filter: "budget > 3"},
		{OrderBy: "director; DROP TABLE cities"},
		{PageToken: "not-a-token"},
	} {
		if _, err := store.ListFilms(ctx, query); !errors.Is(err, storage.ErrInvalidArgument) {
			t.Fatalf("list %+v error = %v, want %v", query, err, storage.ErrInvalidArgument)
		}
	}
}

func TestProjectionAndDistinct(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedFilms(t, store)
	ctx := context.Background()

	credits, err := store.ListFilmCredits(ctx)
	if err != nil {
		t.Fatalf("list credits: %v", err)
	}
	if len(credits) != 5 {
		t.Fatalf("credits = %d, want 5", len(credits))
	}
	if credits[0] != (storage.FilmCredit{Name: "A New Hope", Director: "George Lucas"}) {
		t.Fatalf("first credit = %+v", credits[0])
	}

	directors, err := store.ListDirectors(ctx, "sequel_id < 5")
	if err != nil {
		t.Fatalf("list directors: %v", err)
	}
	if fmt.Sprint(directors) != "[George Lucas]" {
		t.Fatalf("directors = %v, want [George Lucas]", directors)
	}
}

func TestUpdateShiftDeleteAndCount(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedFilms(t, store)
	ctx := context.Background()

	name := "Episode VIII - The Last Jedi"
	affected, err := store.UpdateFilms(ctx, "sequel_id = 8", storage.FilmUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update films: %v", err)
	}
	if affected != 1 {
		t.Fatalf("updated rows = %d, want 1", affected)
	}

	affected, err = store.ShiftSequelIDs(ctx, "sequel_id = 8", 1)
	if err != nil {
		t.Fatalf("shift sequel ids: %v", err)
	}
	if affected != 1 {
		t.Fatalf("shifted rows = %d, want 1", affected)
	}

	page, err := store.ListFilms(ctx, storage.FilmQuery{Filter: "sequel_id = 9"})
	if err != nil {
		t.Fatalf("list shifted film: %v", err)
	}
	if len(page.Films) != 1 || page.Films[0].Name != name {
		t.Fatalf("shifted films = %+v", page.Films)
	}

	deleted, err := store.DeleteFilms(ctx, "sequel_id = 8")
	if err != nil {
		t.Fatalf("delete films: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("deleted rows = %d, want 0 after shift", deleted)
	}
	count, err := store.CountFilms(ctx, "sequel_id = 8")
	if err != nil {
		t.Fatalf("count films: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}

	deleted, err = store.DeleteFilms(ctx, `director = "George Lucas"`)
	if err != nil {
		t.Fatalf("delete lucas films: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted rows = %d, want 2", deleted)
	}
	count, err = store.CountFilms(ctx, "")
	if err != nil {
		t.Fatalf("count all films: %v", err)
	}
	if count != 3 {
		t.Fatalf("remaining films = %d, want 3", count)
	}
}

func TestShiftSequelIDsReportsCollision(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedFilms(t, store)
	_, err := store.ShiftSequelIDs(context.Background(), "sequel_id = 4", 1)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("colliding shift error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestUpdateAndDeleteGuardInputs(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.UpdateFilms(ctx, "sequel_id = 8", storage.FilmUpdate{}); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("empty update error = %v, want %v", err, storage.ErrInvalidArgument)
	}
	if _, err := store.DeleteFilms(ctx, ""); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("unfiltered delete error = %v, want %v", err, storage.ErrInvalidArgument)
	}
}

func TestListDirectorStatsGroupsByDirector(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedFilms(t, store)
	stats, err := store.ListDirectorStats(context.Background())
	if err != nil {
		t.Fatalf("director stats: %v", err)
	}
	if len(stats) != 4 {
		t.Fatalf("stats rows = %d, want 4", len(stats))
	}
	want := storage.DirectorStats{Director: "George Lucas", Films: 2, SumSequel: 5, MinSequel: 1, MaxSequel: 4, AvgSequel: 2.5}
	if stats[0] != want {
		t.Fatalf("first stats row = %+v, want %+v", stats[0], want)
	}
	if stats[2].Director != "Rian Johnson" || stats[2].Films != 1 {
		t.Fatalf("third stats row = %+v", stats[2])
	}
}

func TestCountPlayersByFilmJoinsOnSequelID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedFilms(t, store)
	ctx := context.Background()
	for _, player := range []storage.Player{
		{SequelID: 4, Name: "Luke"},
		{SequelID: 8, Name: "Rey"},
		{SequelID: 42, Name: "Nobody"},
	} {
		if err := store.CreatePlayer(ctx, player); err != nil {
			t.Fatalf("create player %+v: %v", player, err)
		}
	}
	if err := store.CreatePlayer(ctx, storage.Player{SequelID: 4, Name: "Leia"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate player error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	for sequelID, want := range map[int]bool{4: true, 42: true, 5: false} {
		got, err := store.HasPlayer(ctx, sequelID)
		if err != nil {
			t.Fatalf("has player %d: %v", sequelID, err)
		}
		if got != want {
			t.Fatalf("has player %d = %v, want %v", sequelID, got, want)
		}
	}

	counts, err := store.CountPlayersByFilm(ctx)
	if err != nil {
		t.Fatalf("count players by film: %v", err)
	}
	want := []storage.FilmPlayerCount{
		{FilmName: "A New Hope", Players: 1},
		{FilmName: "The Last Jedi", Players: 1},
	}
	if fmt.Sprint(counts) != fmt.Sprint(want) {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
}

func TestAliases(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedFilms(t, store)
	ctx := context.Background()

	films, err := store.ListFilmsAs(ctx, "ft1")
	if err != nil {
		t.Fatalf("list films as ft1: %v", err)
	}
	if len(films) != 5 {
		t.Fatalf("aliased films = %d, want 5", len(films))
	}
	if _, err := store.ListFilmsAs(ctx, `ft1"; DROP TABLE cities; --`); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("bad alias error = %v, want %v", err, storage.ErrInvalidArgument)
	}

	pairs, err := store.ListFilmSequels(ctx)
	if err != nil {
		t.Fatalf("list film sequels: %v", err)
	}
	want := []storage.FilmSequelPair{
		{Original: "A New Hope", Sequel: "The Phantom Menace"},
		{Original: "The Empire Strikes Back", Sequel: "The Last Jedi"},
		{Original: "The Phantom Menace", Sequel: "A New Hope"},
	}
	if fmt.Sprint(pairs) != fmt.Sprint(want) {
		t.Fatalf("pairs = %+v, want %+v", pairs, want)
	}
}

func TestSchemaLifecycle(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.CreateSchema(ctx, "my_schema"); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	schemas, err := store.ListSchemas(ctx)
	if err != nil {
		t.Fatalf("list schemas: %v", err)
	}
	if !contains(schemas, "my_schema") {
		t.Fatalf("schemas = %v, want my_schema", schemas)
	}
	if err := store.CreateSchema(ctx, "my_schema"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate schema error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if err := store.DropSchema(ctx, "my_schema"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	schemas, err = store.ListSchemas(ctx)
	if err != nil {
		t.Fatalf("list schemas after drop: %v", err)
	}
	if contains(schemas, "my_schema") {
		t.Fatalf("schemas = %v, want my_schema dropped", schemas)
	}
	if err := store.DropSchema(ctx, "my_schema"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing schema error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.CreateSchema(ctx, "bad name"); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("bad schema name error = %v, want %v", err, storage.ErrInvalidArgument)
	}
}

func TestSchemaChangesAreRejectedInsideSQLiteTransaction(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.InTx(context.Background(), func(tx *Store) error {
		return tx.CreateSchema(context.Background(), "my_schema")
	})
	if !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("schema in tx error = %v, want %v", err, storage.ErrInvalidArgument)
	}
}

func TestSequenceLifecycle(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.CreateSequence(ctx, storage.Sequence{Name: "my_sequence", Start: 100, Increment: 10}); err != nil {
		t.Fatalf("create sequence: %v", err)
	}
	if err := store.CreateSequence(ctx, storage.Sequence{Name: "my_sequence"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate sequence error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	for _, want := range []int64{100, 110, 120} {
		got, err := store.NextSequenceValue(ctx, "my_sequence")
		if err != nil {
			t.Fatalf("next value: %v", err)
		}
		if got != want {
			t.Fatalf("next value = %d, want %d", got, want)
		}
	}
	if err := store.DropSequence(ctx, "my_sequence"); err != nil {
		t.Fatalf("drop sequence: %v", err)
	}
	if _, err := store.NextSequenceValue(ctx, "my_sequence"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("next value after drop error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.DropSequence(ctx, "my_sequence"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("drop missing sequence error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateFilmWithSequenceID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateSequence(ctx, storage.Sequence{Name: "film_ids", Start: 1000}); err != nil {
		t.Fatalf("create sequence: %v", err)
	}
	id, err := store.NextSequenceValue(ctx, "film_ids")
	if err != nil {
		t.Fatalf("next value: %v", err)
	}
	if err := store.CreateFilmWithID(ctx, id, storage.FilmInput{SequelID: 9, Name: "The Rise of Skywalker", Director: "J. J. Abrams"}); err != nil {
		t.Fatalf("create film with id: %v", err)
	}
	film, err := store.GetFilm(ctx, 1000)
	if err != nil {
		t.Fatalf("get film: %v", err)
	}
	if film.Name != "The Rise of Skywalker" {
		t.Fatalf("film name = %q", film.Name)
	}
	if err := store.CreateFilmWithID(ctx, 1000, storage.FilmInput{SequelID: 10, Name: "Duplicate", Director: "Nobody"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate id error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestBatchCreateCities(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	ids, err := store.BatchCreateCities(ctx, []string{"Paris", "Moscow", "Helsinki"})
	if err != nil {
		t.Fatalf("batch create cities: %v", err)
	}
	if len(ids) != 3 || ids[0] >= ids[1] || ids[1] >= ids[2] {
		t.Fatalf("ids = %v, want three increasing ids", ids)
	}

	cities, err := store.ListCities(ctx)
	if err != nil {
		t.Fatalf("list cities: %v", err)
	}
	for i, name := range []string{"Paris", "Moscow", "Helsinki"} {
		if cities[i].ID != ids[i] || cities[i].Name != name {
			t.Fatalf("city %d = %+v, want id %d name %q", i, cities[i], ids[i], name)
		}
	}

	empty, err := store.BatchCreateCities(ctx, nil)
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty batch ids = %v", empty)
	}
}

func TestBatchCreateCitiesIsAllOrNothing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	_, err := store.BatchCreateCities(ctx, []string{"Paris", strings.Repeat("x", storage.NameMaxLength+1)})
	if !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("batch error = %v, want %v", err, storage.ErrInvalidArgument)
	}
	cities, err := store.ListCities(ctx)
	if err != nil {
		t.Fatalf("list cities: %v", err)
	}
	if len(cities) != 0 {
		t.Fatalf("cities = %+v, want none", cities)
	}
}

func TestRatingsResolveReferences(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ids := seedFilms(t, store)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	bob, err := store.CreateUser(ctx, "Bob")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	solo, err := store.CreateRating(ctx, storage.RatingInput{Value: 5, FilmID: ids["The Last Jedi"], UserID: alice})
	if err != nil {
		t.Fatalf("create rating: %v", err)
	}
	shared, err := store.CreateRating(ctx, storage.RatingInput{Value: 9, FilmID: ids["The Last Jedi"], UserID: alice, SecondUserID: &bob})
	if err != nil {
		t.Fatalf("create shared rating: %v", err)
	}

	ratings, err := store.ListFilmRatings(ctx, ids["The Last Jedi"])
	if err != nil {
		t.Fatalf("list film ratings: %v", err)
	}
	if len(ratings) != 2 || ratings[0].ID != solo || ratings[1].ID != shared {
		t.Fatalf("ratings = %+v", ratings)
	}
	if ratings[0].SecondUserID != nil || ratings[1].SecondUserID == nil || *ratings[1].SecondUserID != bob {
		t.Fatalf("second users = %v %v", ratings[0].SecondUserID, ratings[1].SecondUserID)
	}

	detail, err := store.GetRatingDetail(ctx, shared)
	if err != nil {
		t.Fatalf("get rating detail: %v", err)
	}
	if detail.FilmName != "The Last Jedi" || detail.UserName != "Alice" || detail.SecondUserName == nil || *detail.SecondUserName != "Bob" {
		t.Fatalf("detail = %+v", detail)
	}
	detail, err = store.GetRatingDetail(ctx, solo)
	if err != nil {
		t.Fatalf("get solo rating detail: %v", err)
	}
	if detail.SecondUserName != nil || detail.SecondUserID != nil {
		t.Fatalf("solo rating second user = %v %v", detail.SecondUserID, detail.SecondUserName)
	}
	if _, err := store.GetRatingDetail(ctx, shared+100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing rating error = %v, want %v", err, storage.ErrNotFound)
	}

	_, err = store.CreateRating(ctx, storage.RatingInput{Value: 1, FilmID: 9999, UserID: alice})
	if !errors.Is(err, storage.ErrInvalidReference) {
		t.Fatalf("dangling film error = %v, want %v", err, storage.ErrInvalidReference)
	}
}

func TestFilmActorsManyToMany(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ids := seedFilms(t, store)
	ctx := context.Background()

	mark, err := store.CreateActor(ctx, "Mark", "Hamill")
	if err != nil {
		t.Fatalf("create actor: %v", err)
	}
	carrie, err := store.CreateActor(ctx, "Carrie", "Fisher")
	if err != nil {
		t.Fatalf("create actor: %v", err)
	}
	for _, film := range []string{"A New Hope", "The Last Jedi"} {
		for _, actor := range []int64{mark, carrie} {
			if err := store.AddFilmActor(ctx, ids[film], actor); err != nil {
				t.Fatalf("add actor %d to %s: %v", actor, film, err)
			}
		}
	}
	if err := store.AddFilmActor(ctx, ids["A New Hope"], mark); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate link error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	found, err := store.FindActor(ctx, "Carrie", "Fisher")
	if err != nil {
		t.Fatalf("find actor: %v", err)
	}
	if found != carrie {
		t.Fatalf("find actor = %d, want %d", found, carrie)
	}
	if _, err := store.FindActor(ctx, "Harrison", "Ford"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing actor error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.AddFilmActor(ctx, ids["A New Hope"], 9999); !errors.Is(err, storage.ErrInvalidReference) {
		t.Fatalf("dangling actor error = %v, want %v", err, storage.ErrInvalidReference)
	}

	actors, err := store.ListFilmActors(ctx, ids["The Last Jedi"])
	if err != nil {
		t.Fatalf("list film actors: %v", err)
	}
	if len(actors) != 2 || actors[0].Lastname != "Hamill" || actors[1].Lastname != "Fisher" {
		t.Fatalf("actors = %+v", actors)
	}
	actors, err = store.ListFilmActors(ctx, ids["Return of the Jedi"])
	if err != nil {
		t.Fatalf("list actors of unlinked film: %v", err)
	}
	if len(actors) != 0 {
		t.Fatalf("unlinked film actors = %+v", actors)
	}
}

func TestNodeParentsAndChildren(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	nodes := make(map[string]int64)
	for _, name := range []string{"root", "left", "right", "leaf"} {
		id, err := store.CreateNode(ctx, name)
		if err != nil {
			t.Fatalf("create node %s: %v", name, err)
		}
		nodes[name] = id
	}
	links := [][2]string{{"root", "left"}, {"root", "right"}, {"left", "leaf"}, {"right", "leaf"}}
	for _, link := range links {
		if err := store.LinkNodes(ctx, nodes[link[0]], nodes[link[1]]); err != nil {
			t.Fatalf("link %v: %v", link, err)
		}
	}
	if err := store.LinkNodes(ctx, nodes["root"], nodes["left"]); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate link error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if err := store.LinkNodes(ctx, nodes["leaf"], nodes["leaf"]); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("self link error = %v, want %v", err, storage.ErrInvalidArgument)
	}

	children, err := store.ListNodeChildren(ctx, nodes["root"])
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 2 || children[0].Name != "left" || children[1].Name != "right" {
		t.Fatalf("children = %+v", children)
	}
	parents, err := store.ListNodeParents(ctx, nodes["leaf"])
	if err != nil {
		t.Fatalf("list parents: %v", err)
	}
	if len(parents) != 2 || parents[0].Name != "left" || parents[1].Name != "right" {
		t.Fatalf("parents = %+v", parents)
	}
	parents, err = store.ListNodeParents(ctx, nodes["root"])
	if err != nil {
		t.Fatalf("list root parents: %v", err)
	}
	if len(parents) != 0 {
		t.Fatalf("root parents = %+v", parents)
	}
}

func TestInTxCommitsAndRollsBack(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(tx *Store) error {
		_, err := tx.CreateFilm(ctx, storage.FilmInput{SequelID: 4, Name: "A New Hope", Director: "George Lucas"})
		return err
	})
	if err != nil {
		t.Fatalf("committed tx: %v", err)
	}

	boom := errors.New("boom")
	err = store.InTx(ctx, func(tx *Store) error {
		if _, err := tx.CreateFilm(ctx, storage.FilmInput{SequelID: 5, Name: "The Empire Strikes Back", Director: "Irvin Kershner"}); err != nil {
			return err
		}
		// Nested calls share the outer transaction.
		return tx.InTx(ctx, func(inner *Store) error {
			if inner != tx {
				t.Error("expected nested InTx to reuse the transaction store")
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("rolled back tx error = %v, want %v", err, boom)
	}

	count, err := store.CountFilms(ctx, "")
	if err != nil {
		t.Fatalf("count films: %v", err)
	}
	if count != 1 {
		t.Fatalf("film count = %d, want 1 after rollback", count)
	}
	if err := store.InTx(ctx, nil); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("nil fn error = %v, want %v", err, storage.ErrInvalidArgument)
	}
}

func TestPostgresSmoke(t *testing.T) {
	dsn := os.Getenv("SQLTOUR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SQLTOUR_TEST_POSTGRES_DSN not set")
	}

	store, err := Open(context.Background(), Options{Dialect: sqldialect.Postgres, DSN: dsn})
	if err != nil {
		t.Fatalf("open postgres store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	err = store.InTx(ctx, func(tx *Store) error {
		if _, err := tx.CreateFilm(ctx, storage.FilmInput{SequelID: 900, Name: "Smoke", Director: "Test"}); err != nil {
			return err
		}
		count, err := tx.CountFilms(ctx, "sequel_id = 900")
		if err != nil {
			return err
		}
		if count != 1 {
			return fmt.Errorf("count = %d, want 1", count)
		}
		return errors.New("rollback smoke data")
	})
	if err == nil || err.Error() != "rollback smoke data" {
		t.Fatalf("smoke tx error = %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, storeCounter.Add(1))
	store, err := Open(context.Background(), Options{Dialect: sqldialect.SQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func seedFilms(t *testing.T, store *Store) map[string]int64 {
	t.Helper()
	ids := make(map[string]int64)
	for _, input := range []storage.FilmInput{
		{SequelID: 4, Name: "A New Hope", Director: "George Lucas"},
		{SequelID: 5, Name: "The Empire Strikes Back", Director: "Irvin Kershner"},
		{SequelID: 6, Name: "Return of the Jedi", Director: "Richard Marquand"},
		{SequelID: 1, Name: "The Phantom Menace", Director: "George Lucas"},
		{SequelID: 8, Name: "The Last Jedi", Director: "Rian Johnson"},
	} {
		id, err := store.CreateFilm(context.Background(), input)
		if err != nil {
			t.Fatalf("seed film %s: %v", input.Name, err)
		}
		ids[input.Name] = id
	}
	return ids
}

func sequelIDs(films []storage.Film) []int {
	out := make([]int, len(films))
	for i, film := range films {
		out[i] = film.SequelID
	}
	return out
}

func contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
