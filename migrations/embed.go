// Package migrations embeds the schema files applied by internal/migration.
package migrations

import "embed"

// FS holds one directory per driver: sqlite/ and postgres/.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
