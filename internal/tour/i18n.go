package tour

import (
	"strings"

	"golang.org/x/text/language"
)

// Message keys registered with golang.org/x/text/message.
const (
	StepHeadingKey  = "tour.step.heading"
	RowsAffectedKey = "tour.rows_affected"
	CountKey        = "tour.count"
	CreatedIDKey    = "tour.created_id"
	NextValueKey    = "tour.next_value"
	NoRowsKey       = "tour.no_rows"
	SkippedKey      = "tour.skipped"

	TitleSchemaKey           = "tour.title.schema"
	TitleCreateKey           = "tour.title.create"
	TitleReadKey             = "tour.title.read"
	TitleProjectionKey       = "tour.title.projection"
	TitleDistinctKey         = "tour.title.distinct"
	TitleUpdateKey           = "tour.title.update"
	TitleUpdateExpressionKey = "tour.title.update_expression"
	TitleDeleteKey           = "tour.title.delete"
	TitleCountKey            = "tour.title.count"
	TitleOrderByKey          = "tour.title.order_by"
	TitleGroupByKey          = "tour.title.group_by"
	TitleJoinKey             = "tour.title.join"
	TitleAliasKey            = "tour.title.alias"
	TitleSelfJoinKey         = "tour.title.self_join"
	TitleSchemaManagementKey = "tour.title.schema_management"
	TitleSequenceKey         = "tour.title.sequence"
	TitleBatchInsertKey      = "tour.title.batch_insert"
	TitleReferencesKey       = "tour.title.references"
	TitleManyToManyKey       = "tour.title.many_to_many"
	TitleParentChildKey      = "tour.title.parent_child"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.MustParse("pt-BR"),
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// ResolveLanguage maps a BCP 47 name onto a supported output language.
// Unknown or malformed names fall back to English.
func ResolveLanguage(name string) language.Tag {
	name = strings.TrimSpace(name)
	if name == "" {
		return language.English
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	_, index, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	return supportedLanguages[index]
}
