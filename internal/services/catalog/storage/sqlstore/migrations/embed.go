// Package migrations embeds the catalog schema for each SQL dialect.
package migrations

import "embed"

// FS contains one directory of migrations per dialect, named after it.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
