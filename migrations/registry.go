package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	accounts "github.com/goliatone/go-accounts"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// dialectDirs maps each dialect to its directory in the embedded tree.
var dialectDirs = map[string]string{
	DialectPostgres: "data/sql/migrations",
	DialectSQLite:   "data/sql/migrations/sqlite",
}

// RegisterFunc receives one dialect's account record migrations, usually to
// pass them to a persistence client's RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, fsys fs.FS) error

// Source returns the account record migrations for dialect. The result holds
// at least one *.up.sql file.
func Source(dialect string) (fs.FS, error) {
	dialect = strings.TrimSpace(strings.ToLower(dialect))
	dir, ok := dialectDirs[dialect]
	if !ok {
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	sub, err := fs.Sub(accounts.GetMigrationsFS(), dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s migrations: %w", dialect, err)
	}
	matches, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: glob %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("migrations: %s has no *.up.sql files", dir)
	}
	return sub, nil
}

// Register hands the migrations of each listed dialect to registerFn, in
// order. With no dialects it registers postgres then sqlite. Repeated
// dialects are registered once.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	if len(dialects) == 0 {
		dialects = []string{DialectPostgres, DialectSQLite}
	}

	seen := make(map[string]bool, len(dialects))
	for _, dialect := range dialects {
		dialect = strings.TrimSpace(strings.ToLower(dialect))
		if seen[dialect] {
			continue
		}
		seen[dialect] = true

		fsys, err := Source(dialect)
		if err != nil {
			return err
		}
		if err := registerFn(ctx, dialect, fsys); err != nil {
			return fmt.Errorf("migrations: register %s: %w", dialect, err)
		}
	}
	return nil
}
