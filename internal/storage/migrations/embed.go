// Package migrations embeds and applies the SQL schema for both stores.
package migrations

import "embed"

// schemaFS holds the instrument and candle schema, one directory per database.
// Files within a directory run in lexical order.
//
//go:embed postgres/*.sql clickhouse/*.sql
var schemaFS embed.FS
