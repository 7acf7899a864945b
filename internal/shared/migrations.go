package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationName matches "0001_band_name_unique_up.sql".
var migrationName = regexp.MustCompile(`^(\d+)_(\w+)_(up|down)\.sql$`)

// Migration is one versioned schema change with its up and down scripts.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

type direction int

const (
	up direction = iota
	down
)

// loadMigrations reads the embedded scripts, pairing up/down files by version, oldest first.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		m := migrationName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}

		version, _ := strconv.Atoi(m[1])
		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		}
		if m[3] == "up" {
			mig.Up = string(content)
		} else {
			mig.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("incomplete migration %04d_%s", mig.Version, mig.Name)
		}
		migrations = append(migrations, *mig)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })

	return migrations, nil
}

// RunMigrations applies every embedded migration not yet recorded in schema_migrations, oldest first.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := AppliedVersions(db)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if slices.Contains(applied, mig.Version) {
			continue
		}
		if err := migrate(db, mig, up); err != nil {
			return fmt.Errorf("failed to apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
	}

	return nil
}

// RollbackMigration reverts the newest applied migration.
func RollbackMigration(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := AppliedVersions(db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	latest := applied[len(applied)-1]
	i := slices.IndexFunc(migrations, func(m Migration) bool { return m.Version == latest })
	if i < 0 {
		return fmt.Errorf("migration version %d not found", latest)
	}

	if err := migrate(db, migrations[i], down); err != nil {
		return fmt.Errorf("failed to rollback migration %04d_%s: %w", latest, migrations[i].Name, err)
	}
	return nil
}

// migrate runs one script and updates schema_migrations in the same transaction.
func migrate(db *sql.DB, mig Migration, dir direction) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	script, record, args := mig.Up, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", []any{mig.Version, mig.Name}
	if dir == down {
		script, record, args = mig.Down, "DELETE FROM schema_migrations WHERE version = ?", []any{mig.Version}
	}

	if err := execScript(tx, script); err != nil {
		return err
	}
	if _, err := tx.Exec(record, args...); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// execScript runs the semicolon separated statements of script. Comments must not contain semicolons.
func execScript(tx *sql.Tx, script string) error {
	for stmt := range strings.SplitSeq(script, ";") {
		stmt = stripComments(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}
	return nil
}

// stripComments drops "--" line comments and blank lines.
func stripComments(stmt string) string {
	var kept []string
	for line := range strings.Lines(stmt) {
		if before, _, found := strings.Cut(line, "--"); found {
			line = before
		}
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ensureMigrationsTable creates schema_migrations when missing.
func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// AppliedVersions lists the migration versions recorded in schema_migrations, oldest first.
func AppliedVersions(db *sql.DB) ([]int, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// PendingMigrations reports how many embedded migrations have not been applied yet.
func PendingMigrations(db *sql.DB) (int, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := AppliedVersions(db)
	if err != nil {
		return 0, err
	}

	pending := 0
	for _, mig := range migrations {
		if !slices.Contains(applied, mig.Version) {
			pending++
		}
	}
	return pending, nil
}
