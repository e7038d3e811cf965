package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Migrate applies every *.sql file in dir that is not yet recorded in
// schema_migrations, in lexical order. It returns the applied file names.
func Migrate(ctx context.Context, pool *Pool, dir string, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := ensureSchemaTable(ctx, pool); err != nil {
		return nil, fmt.Errorf("ensure schema table: %w", err)
	}

	files, err := listSQLFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var applied []string
	for _, file := range files {
		name := filepath.Base(file)
		done, err := isApplied(ctx, pool, name)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", name, err)
		}
		if done {
			continue
		}
		if err := applyMigration(ctx, pool, file, name); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", name, err)
		}
		log.Info("applied migration", zap.String("file", name))
		applied = append(applied, name)
	}
	return applied, nil
}

func ensureSchemaTable(ctx context.Context, pool *Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (filename TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`)
	return err
}

func listSQLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isApplied(ctx context.Context, pool *Pool, name string) (bool, error) {
	var exists bool
	row := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename=$1)`, name)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// applyMigration runs the file and records it in one transaction.
func applyMigration(ctx context.Context, pool *Pool, file, name string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if strings.TrimSpace(string(data)) != "" {
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
