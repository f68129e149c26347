/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "goxplot/internal/log"
	"goxplot/internal/version"
	"goxplot/internal/xplot"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// schemaVersion is the current cache layout. Fresh databases are created
	// at version 1 and migrated forward like existing ones.
	schemaVersion = 2

	// fixed width so that timestamps sort as text
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Cache is an open scene cache. It is safe for use by one process at a time.
type Cache struct {
	db   *sql.DB
	path string
	l    *slog.Logger
}

// Entry is one cached parse result.
type Entry struct {
	Key         string
	Source      string // input path, informational
	Scene       *xplot.Scene
	Diagnostics []xplot.Diagnostic
}

// Summary describes a cached entry without decoding its scene.
type Summary struct {
	Key         string
	Source      string
	Polylines   int
	Markers     int
	Annotations int
	Diagnostics int
	Hits        int
	CreatedAt   time.Time
	LastUsed    time.Time
}

// Key derives the cache key for a script and the fingerprint of the options
// used to parse it.
func Key(input []byte, fingerprint string) string {
	h := sha256.New()
	h.Write(input)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

// Open creates or opens the cache database at path, enables WAL mode and
// brings the schema up to date.
func Open(ctx context.Context, path string) (*Cache, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "cache_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureCacheSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Debug("cache ready")
	return &Cache{db: db, path: path, l: applog.WithComponent("storage")}, nil
}

// OpenOrReset opens the cache and, if the file is damaged, moves it aside as
// <path>.<stamp>.bak and starts over. reset reports whether that happened.
func OpenOrReset(ctx context.Context, path string) (c *Cache, reset bool, err error) {
	c, err = Open(ctx, path)
	if err == nil {
		if err = c.quickCheck(ctx); err == nil {
			return c, false, nil
		}
		_ = c.Close()
	}
	l := applog.WithComponent("storage")
	l.Warn("scene cache unusable, recreating", slog.String("path", path), slog.Any("err", err))
	if bErr := backupFile(path); bErr != nil {
		return nil, false, fmt.Errorf("back up damaged cache: %w", bErr)
	}
	c, err = Open(ctx, path)
	if err != nil {
		return nil, true, err
	}
	return c, true, nil
}

func (c *Cache) quickCheck(ctx context.Context) error {
	var res string
	if err := c.db.QueryRowContext(ctx, "PRAGMA quick_check;").Scan(&res); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(res), "ok") {
		return fmt.Errorf("quick_check: %s", res)
	}
	return nil
}

func backupFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	bak := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
	if err := os.Rename(path, bak); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	return nil
}

func (c *Cache) Path() string { return c.path }

func (c *Cache) Close() error { return c.db.Close() }

// Get returns the entry stored under key. A row whose scene no longer
// decodes or fails schema validation is deleted and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool, error) {
	var src, sceneJSON, diagJSON string
	err := c.db.QueryRowContext(ctx,
		`SELECT source, scene_json, diag_json FROM scenes WHERE key=?`, key,
	).Scan(&src, &sceneJSON, &diagJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read scene: %w", err)
	}

	e := Entry{Key: key, Source: src}
	if err := decodeEntry(&e, []byte(sceneJSON), []byte(diagJSON)); err != nil {
		c.l.Warn("dropping invalid cache row", slog.String("key", key), slog.Any("err", err))
		if _, dErr := c.db.ExecContext(ctx, `DELETE FROM scenes WHERE key=?`, key); dErr != nil {
			return Entry{}, false, fmt.Errorf("delete invalid row: %w", dErr)
		}
		return Entry{}, false, nil
	}

	now := time.Now().UTC().Format(timeLayout)
	if _, err := c.db.ExecContext(ctx, `UPDATE scenes SET hits=hits+1, last_used=? WHERE key=?`, now, key); err != nil {
		return Entry{}, false, fmt.Errorf("touch scene: %w", err)
	}
	return e, true, nil
}

func decodeEntry(e *Entry, sceneJSON, diagJSON []byte) error {
	if err := validateScene(sceneJSON); err != nil {
		return err
	}
	var s xplot.Scene
	if err := json.Unmarshal(sceneJSON, &s); err != nil {
		return fmt.Errorf("decode scene: %w", err)
	}
	if err := json.Unmarshal(diagJSON, &e.Diagnostics); err != nil {
		return fmt.Errorf("decode diagnostics: %w", err)
	}
	e.Scene = &s
	return nil
}

// Put stores e, replacing any entry with the same key.
func (c *Cache) Put(ctx context.Context, e Entry) error {
	if e.Key == "" || e.Scene == nil {
		return errors.New("cache entry needs a key and a scene")
	}
	sceneJSON, err := json.Marshal(e.Scene)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	diags := e.Diagnostics
	if diags == nil {
		diags = []xplot.Diagnostic{}
	}
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO scenes (key, source, scene_json, diag_json, polylines, markers, annotations, diagnostics, created_at, last_used, hits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(key) DO UPDATE SET
			source=excluded.source, scene_json=excluded.scene_json, diag_json=excluded.diag_json,
			polylines=excluded.polylines, markers=excluded.markers, annotations=excluded.annotations,
			diagnostics=excluded.diagnostics, last_used=excluded.last_used`,
		e.Key, e.Source, string(sceneJSON), string(diagJSON),
		len(e.Scene.Polylines), e.Scene.MarkerCount(), len(e.Scene.Annotations), len(diags), now, now)
	if err != nil {
		return fmt.Errorf("store scene: %w", err)
	}
	c.l.Debug("scene cached", slog.String("key", e.Key[:min(12, len(e.Key))]), slog.String("source", e.Source))
	return nil
}

// List returns up to limit entries, most recently used first. limit <= 0
// means no limit.
func (c *Cache) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT key, source, polylines, markers, annotations, diagnostics, hits, created_at, last_used
		FROM scenes ORDER BY last_used DESC, key LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var created, used string
		if err := rows.Scan(&s.Key, &s.Source, &s.Polylines, &s.Markers, &s.Annotations, &s.Diagnostics, &s.Hits, &created, &used); err != nil {
			return nil, fmt.Errorf("scan scene row: %w", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		s.LastUsed, _ = time.Parse(time.RFC3339Nano, used)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune keeps the keep most recently used entries and deletes the rest. It
// returns the number of rows removed.
func (c *Cache) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM scenes WHERE key NOT IN (
			SELECT key FROM scenes ORDER BY last_used DESC, key LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune scenes: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		now := time.Now().UTC().Format(timeLayout)
		if _, err := c.db.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES('last_prune', ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value`, now); err != nil {
			return int(n), fmt.Errorf("record prune: %w", err)
		}
	}
	return int(n), nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureCacheSchema creates the version 1 layout; runMigrations takes it
// from there.
func ensureCacheSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS scenes (
			key          TEXT PRIMARY KEY,
			source       TEXT    NOT NULL,
			scene_json   TEXT    NOT NULL,
			diag_json    TEXT    NOT NULL,
			polylines    INTEGER NOT NULL,
			markers      INTEGER NOT NULL,
			annotations  INTEGER NOT NULL,
			created_at   TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scenes_source ON scenes(source);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure cache schema: %w", err)
		}
	}
	return nil
}

// migrations[i] upgrades schema i+1 to i+2.
var migrations = [][]string{
	{
		`ALTER TABLE scenes ADD COLUMN diagnostics INTEGER NOT NULL DEFAULT 0;`,
		`ALTER TABLE scenes ADD COLUMN hits INTEGER NOT NULL DEFAULT 0;`,
		`ALTER TABLE scenes ADD COLUMN last_used TEXT NOT NULL DEFAULT '';`,
		`UPDATE scenes SET last_used=created_at WHERE last_used='';`,
		`CREATE INDEX IF NOT EXISTS idx_scenes_last_used ON scenes(last_used);`,
	},
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		return fmt.Errorf("cache schema %d is newer than supported %d", cur, schemaVersion)
	}
	for ; cur < schemaVersion; cur++ {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range migrations[cur-1] {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
	}
	return nil
}
