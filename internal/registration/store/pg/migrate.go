package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
)

// Direction de una migración.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate aplica los *_up.sql (orden ascendente) o *_down.sql (orden inverso)
// de fsys/dir. steps > 0 limita la cantidad de archivos. Devuelve los aplicados.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir string, d Direction, steps int) ([]string, error) {
	var suffix string
	switch d {
	case Up:
		suffix = "_up.sql"
	case Down:
		suffix = "_down.sql"
	default:
		return nil, fmt.Errorf("unknown action %q. Use: up | down [steps]", d)
	}

	files, err := listSQL(fsys, dir, suffix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d, err)
	}
	sort.Strings(files)
	if d == Down {
		reverseInPlace(files)
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	log := logger.From(ctx).With(logger.Component("migrate"))
	applied := make([]string, 0, len(files))
	for _, f := range files {
		if err := execSQLFile(ctx, pool, fsys, f); err != nil {
			return applied, fmt.Errorf("exec %s: %w", f, err)
		}
		applied = append(applied, path.Base(f))
	}
	log.Info("migrations applied", zap.String("direction", string(d)), zap.Int("count", len(applied)))
	return applied, nil
}

// ListMigrations devuelve los archivos de la dirección indicada en el orden de aplicación.
func ListMigrations(fsys fs.FS, dir string, d Direction) ([]string, error) {
	files, err := listSQL(fsys, dir, "_"+string(d)+".sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	if d == Down {
		reverseInPlace(files)
	}
	return files, nil
}

func listSQL(fsys fs.FS, dir, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			name := e.Name()
			if strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
				out = append(out, path.Join(dir, name))
			}
		}
	}
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}

func execSQLFile(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, p string) error {
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	start := time.Now()
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	logger.From(ctx).Debug("migration ok",
		zap.String("file", path.Base(p)),
		logger.Duration(time.Since(start).Truncate(time.Millisecond)),
	)
	return nil
}
