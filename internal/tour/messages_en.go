package tour

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, StepHeadingKey, "== %s (%s) ==")
	message.SetString(lang, RowsAffectedKey, "%d row(s) affected")
	message.SetString(lang, CountKey, "count: %d")
	message.SetString(lang, CreatedIDKey, "created id: %d")
	message.SetString(lang, NextValueKey, "next value: %d")
	message.SetString(lang, NoRowsKey, "(no rows)")
	message.SetString(lang, SkippedKey, "skipped: %s")

	message.SetString(lang, TitleSchemaKey, "Schema definition")
	message.SetString(lang, TitleCreateKey, "Insert and get id")
	message.SetString(lang, TitleReadKey, "Select by sequel id")
	message.SetString(lang, TitleProjectionKey, "Select name and director")
	message.SetString(lang, TitleDistinctKey, "Distinct directors before episode 5")
	message.SetString(lang, TitleUpdateKey, "Update a column")
	message.SetString(lang, TitleUpdateExpressionKey, "Update with an expression")
	message.SetString(lang, TitleDeleteKey, "Delete where")
	message.SetString(lang, TitleCountKey, "Count")
	message.SetString(lang, TitleOrderByKey, "Order by")
	message.SetString(lang, TitleGroupByKey, "Group by director")
	message.SetString(lang, TitleJoinKey, "Inner join players and films")
	message.SetString(lang, TitleAliasKey, "Table alias")
	message.SetString(lang, TitleSelfJoinKey, "Self join through an alias")
	message.SetString(lang, TitleSchemaManagementKey, "Create and drop a schema")
	message.SetString(lang, TitleSequenceKey, "Sequences")
	message.SetString(lang, TitleBatchInsertKey, "Batch insert")
	message.SetString(lang, TitleReferencesKey, "Many-to-one references")
	message.SetString(lang, TitleManyToManyKey, "Many-to-many references")
	message.SetString(lang, TitleParentChildKey, "Parent-child references")
}
