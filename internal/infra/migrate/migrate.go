// Package migrate applies embedded SQL migrations to a database/sql handle.
// Each *.sql file runs once, inside its own transaction, and is recorded in
// the schema_migrations table. Files may hold "-- +migrate Up" and
// "-- +migrate Down" sections; only the Up section is executed.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const table = "schema_migrations"

// Dialect captures the statements that differ between database engines.
type Dialect struct {
	Name        string
	selectSQL   string
	insertSQL   string
	createTable string
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		createTable: "CREATE TABLE IF NOT EXISTS " + table + " (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)",
		selectSQL:   "SELECT 1 FROM " + table + " WHERE name = ?",
		insertSQL:   "INSERT OR IGNORE INTO " + table + " (name, applied_at) VALUES (?, ?)",
	}
	Postgres = Dialect{
		Name:        "postgres",
		createTable: "CREATE TABLE IF NOT EXISTS " + table + " (name TEXT PRIMARY KEY, applied_at BIGINT NOT NULL)",
		selectSQL:   "SELECT 1 FROM " + table + " WHERE name = $1",
		insertSQL:   "INSERT INTO " + table + " (name, applied_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
	}
)

// Apply runs every pending migration found in root of fsys, in file name order.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS, root string, d Dialect) error {
	if db == nil {
		return errors.New("migrate: sql db is required")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("migrate: read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		return fmt.Errorf("migrate: ensure %s: %w", table, err)
	}

	for _, file := range files {
		applied, err := isApplied(ctx, db, d, file)
		if err != nil {
			return fmt.Errorf("migrate: check %s: %w", file, err)
		}
		if applied {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(root, file))
		if err != nil {
			return fmt.Errorf("migrate: read %s: %w", file, err)
		}
		up := UpSection(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}
		if err := applyOne(ctx, db, d, file, up); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(ctx context.Context, db *sql.DB, d Dialect, name, up string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, up); err != nil && !isAlreadyExists(err) {
		_ = tx.Rollback()
		return fmt.Errorf("migrate: exec %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, d.insertSQL, name, time.Now().UTC().UnixMilli()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migrate: record %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit %s: %w", name, err)
	}
	return nil
}

// UpSection returns the SQL between "-- +migrate Up" and "-- +migrate Down",
// or the whole content when there are no markers.
func UpSection(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	body := content[upIdx+len("-- +migrate Up"):]
	if downIdx := strings.Index(body, "-- +migrate Down"); downIdx != -1 {
		body = body[:downIdx]
	}
	return body
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func isApplied(ctx context.Context, db *sql.DB, d Dialect, name string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, d.selectSQL, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
