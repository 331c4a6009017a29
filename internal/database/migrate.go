package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mission-desk/internal/logger"

	"go.uber.org/zap"
)

const createMigrationsTable = `CREATE TABLE schema_migrations (
	version VARCHAR2(255) PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
)`

// RunMigrations applies every *.up.sql file of dir in lexical order, skipping versions
// already recorded in schema_migrations. Statements inside a file are separated by ";"
// at the end of a line since Oracle executes one statement per call.
func RunMigrations(ctx context.Context, db *sql.DB, dir string) error {
	l := logger.Get()

	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		version := strings.TrimSuffix(name, ".up.sql")

		var applied int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = :1`, version).Scan(&applied); err != nil {
			return fmt.Errorf("could not check migration %s: %w", version, err)
		}
		if applied > 0 {
			l.Debug("Skipping applied migration", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		for _, stmt := range SplitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}

		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (:1, :2)`, version, time.Now()); err != nil {
			return fmt.Errorf("could not record migration %s: %w", version, err)
		}
		l.Info("Executed migration", zap.String("version", version))
	}

	l.Info("Migrations completed successfully", zap.Int("files", len(files)))
	return nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("could not inspect schema_migrations: %w", err)
	}
	if exists > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}
	return nil
}

// SplitStatements splits a migration file into statements. Lines starting with "--" are dropped.
func SplitStatements(content string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			cur.WriteString(strings.TrimSuffix(strings.TrimRight(line, " \t\r"), ";"))
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	flush()
	return stmts
}
