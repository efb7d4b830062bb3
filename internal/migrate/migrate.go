// Package migrate applies the embedded SurrealQL migrations in version order.
//
// Migration files are named NNNN_description.surql. Each applied version is
// recorded as schema_migration:NNNN in the same transaction as the migration
// itself, so a failed migration leaves no record and is retried on the next run.
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cigno/platform/internal/database"
)

//go:embed migrations/*.surql
var embedded embed.FS

const table = "schema_migration"

var fileName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.surql$`)

// Migration is one versioned script
type Migration struct {
	Version int
	Name    string
	Script  string
}

// Result reports the outcome of Up
type Result struct {
	Applied []Migration
	Skipped []Migration
	DryRun  bool
}

// Load returns the embedded migrations sorted by version
func Load() ([]Migration, error) {
	return LoadFS(embedded, "migrations")
}

// LoadFS reads migrations from dir in fsys. Duplicate versions and
// unrecognised file names are errors.
func LoadFS(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	seen := make(map[int]string)
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".surql") {
			continue
		}
		m := fileName.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("migration %q: name must look like 0001_description.surql", e.Name())
		}
		version, _ := strconv.Atoi(m[1])
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %d used by %s and %s", version, prev, e.Name())
		}
		seen[version] = e.Name()

		script, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if strings.TrimSpace(string(script)) == "" {
			return nil, fmt.Errorf("migration %s is empty", e.Name())
		}
		out = append(out, Migration{Version: version, Name: m[2], Script: string(script)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Runner applies migrations to a database
type Runner struct {
	db         database.Database
	migrations []Migration
	logger     *slog.Logger
}

// NewRunner creates a runner. A nil logger means slog.Default.
func NewRunner(db database.Database, migrations []Migration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, migrations: migrations, logger: logger}
}

// Applied returns the versions already recorded in schema_migration
func (r *Runner) Applied(ctx context.Context) (map[int]bool, error) {
	result, err := r.db.Query(ctx, "SELECT version FROM type::table($tb)", map[string]interface{}{"tb": table})
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}

	applied := make(map[int]bool)
	for _, record := range statementRecords(result) {
		row, ok := record.(map[string]interface{})
		if !ok {
			continue
		}
		if v, ok := toInt(row["version"]); ok {
			applied[v] = true
		}
	}
	return applied, nil
}

// Up applies every pending migration in version order. With dryRun nothing
// is written; the result lists what would run.
func (r *Runner) Up(ctx context.Context, dryRun bool) (*Result, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{DryRun: dryRun}
	for _, m := range r.migrations {
		if applied[m.Version] {
			res.Skipped = append(res.Skipped, m)
			continue
		}
		if dryRun {
			r.logger.InfoContext(ctx, "migration pending", slog.Int("version", m.Version), slog.String("name", m.Name))
			res.Applied = append(res.Applied, m)
			continue
		}

		batch := database.NewAtomicBatch().
			Add(m.Script, nil).
			Add("CREATE type::thing($tb, $version) SET version = $version, name = $name, applied_on = time::now()",
				map[string]interface{}{"tb": table, "version": m.Version, "name": m.Name})
		if err := batch.Execute(ctx, r.db); err != nil {
			return res, fmt.Errorf("migration %04d_%s: %w", m.Version, m.Name, err)
		}

		r.logger.InfoContext(ctx, "migration applied", slog.Int("version", m.Version), slog.String("name", m.Name))
		res.Applied = append(res.Applied, m)
	}
	return res, nil
}

// statementRecords returns the records of the first statement result
func statementRecords(result []interface{}) []interface{} {
	if len(result) == 0 {
		return nil
	}
	if first, ok := result[0].(map[string]interface{}); ok {
		if _, hasStatus := first["status"]; hasStatus {
			records, _ := first["result"].([]interface{})
			return records
		}
	}
	return result
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
