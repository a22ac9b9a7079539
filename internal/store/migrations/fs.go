// Package migrations embeds the versioned SQL migration set for the
// PostgreSQL context-state schema, following the teacher's
// pkg/store/metadata/postgres/migrations package.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
