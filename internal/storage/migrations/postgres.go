package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresExecer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PostgresExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunPostgresMigrations applies all embedded SQL files in lexical order.
// Migrations are idempotent.
func RunPostgresMigrations(ctx context.Context, db PostgresExecer) error {
	files, err := sqlFiles(schemaFS, "postgres")
	if err != nil {
		return fmt.Errorf("read embedded postgres migrations: %w", err)
	}

	for _, file := range files {
		if strings.TrimSpace(file.body) == "" {
			continue
		}
		// No args: pgx uses the simple protocol, which accepts multiple statements.
		if _, err := db.Exec(ctx, file.body); err != nil {
			return fmt.Errorf("apply migration %s: %w", file.name, err)
		}
	}

	return nil
}
