// Package tour runs the catalog demonstration script: an ordered list of
// named steps, each exercising one kind of statement against the catalog
// store and printing what came back.
package tour

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/message"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// Step is one named entry of the script.
type Step struct {
	Name string
	// Title is a message key resolved against the output language.
	Title string
	Run   func(ctx context.Context, env *Env) error
	// NoTx runs the step on the store directly instead of inside a
	// transaction.
	NoTx bool
}

// Env is what a running step sees.
type Env struct {
	Store   storage.CatalogStore
	Out     io.Writer
	Printer *message.Printer
}

// Steps returns the script in run order.
func Steps() []Step {
	return []Step{
		{Name: "schema", Title: TitleSchemaKey, Run: runSchema},
		{Name: "create", Title: TitleCreateKey, Run: runCreate},
		{Name: "read", Title: TitleReadKey, Run: runRead},
		{Name: "projection", Title: TitleProjectionKey, Run: runProjection},
		{Name: "distinct", Title: TitleDistinctKey, Run: runDistinct},
		{Name: "update", Title: TitleUpdateKey, Run: runUpdate},
		{Name: "update-expression", Title: TitleUpdateExpressionKey, Run: runUpdateExpression},
		{Name: "delete", Title: TitleDeleteKey, Run: runDelete},
		{Name: "count", Title: TitleCountKey, Run: runCount},
		{Name: "order-by", Title: TitleOrderByKey, Run: runOrderBy},
		{Name: "group-by", Title: TitleGroupByKey, Run: runGroupBy},
		{Name: "join", Title: TitleJoinKey, Run: runJoin},
		{Name: "alias", Title: TitleAliasKey, Run: runAlias},
		{Name: "self-join", Title: TitleSelfJoinKey, Run: runSelfJoin},
		{Name: "schema-management", Title: TitleSchemaManagementKey, Run: runSchemaManagement, NoTx: true},
		{Name: "sequence", Title: TitleSequenceKey, Run: runSequence},
		{Name: "batch-insert", Title: TitleBatchInsertKey, Run: runBatchInsert},
		{Name: "references", Title: TitleReferencesKey, Run: runReferences},
		{Name: "many-to-many", Title: TitleManyToManyKey, Run: runManyToMany},
		{Name: "parent-child", Title: TitleParentChildKey, Run: runParentChild},
	}
}

// StepNames returns the step names in run order.
func StepNames() []string {
	steps := Steps()
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = step.Name
	}
	return names
}

func (e *Env) heading(step Step) {
	fmt.Fprintln(e.Out)
	fmt.Fprintln(e.Out, e.Printer.Sprintf(StepHeadingKey, e.Printer.Sprintf(step.Title), step.Name))
}

func (e *Env) linef(key string, args ...any) {
	fmt.Fprintln(e.Out, e.Printer.Sprintf(key, args...))
}

// table renders rows under header. An empty result prints a marker instead
// of a bare header.
func (e *Env) table(header []string, rows [][]string) error {
	if len(rows) == 0 {
		e.linef(NoRowsKey)
		return nil
	}
	table := tablewriter.NewWriter(e.Out)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func (e *Env) filmTable(films []storage.Film) error {
	rows := make([][]string, 0, len(films))
	for _, film := range films {
		rows = append(rows, []string{itoa(film.ID), strconv.Itoa(film.SequelID), film.Name, film.Director})
	}
	return e.table([]string{"id", "sequel_id", "name", "director"}, rows)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
