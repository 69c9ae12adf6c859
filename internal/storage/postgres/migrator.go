package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	migrationsGlob    = "sql/migrations/*.sql"
	migrationLockKey  = int64(20250105)
	migrationTableDDL = `
CREATE TABLE IF NOT EXISTS pos_schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

var (
	//go:embed sql/migrations/*.sql
	migrationsFS embed.FS

	migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)
)

// Direction: направление применения миграций.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// MigrationStatus описывает состояние схемы.
type MigrationStatus struct {
	Version int64
	Applied int
	Pending []string
}

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

func (m migration) label() string {
	return fmt.Sprintf("%04d_%s", m.Version, m.Name)
}

// Migrator применяет встроенные SQL-миграции под advisory lock.
type Migrator struct {
	store  *Store
	source fs.FS
	logger *log.Entry
}

// NewMigrator создаёт мигратор поверх встроенных файлов миграций.
func NewMigrator(store *Store, logger *log.Entry) *Migrator {
	if logger == nil {
		logger = log.WithField("component", "migrator")
	}
	return &Migrator{store: store, source: migrationsFS, logger: logger}
}

// Up применяет up-миграции. steps=0 означает "все доступные".
func (m *Migrator) Up(ctx context.Context, steps int) error {
	return m.run(ctx, DirectionUp, steps)
}

// Down откатывает миграции. steps<=0 интерпретируется как один шаг.
func (m *Migrator) Down(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return m.run(ctx, DirectionDown, steps)
}

// Status возвращает текущую версию, число применённых и список ожидающих миграций.
func (m *Migrator) Status(ctx context.Context) (MigrationStatus, error) {
	db, err := m.db()
	if err != nil {
		return MigrationStatus{}, err
	}

	migrations, err := loadMigrationsFromFS(m.source)
	if err != nil {
		return MigrationStatus{}, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()

	if _, err := db.ExecContext(queryCtx, migrationTableDDL); err != nil {
		return MigrationStatus{}, fmt.Errorf("ensure migration table: %w", err)
	}

	applied, err := loadAppliedVersions(queryCtx, db)
	if err != nil {
		return MigrationStatus{}, err
	}

	status := MigrationStatus{Applied: len(applied), Pending: []string{}}
	for version := range applied {
		if version > status.Version {
			status.Version = version
		}
	}
	for _, mg := range migrations {
		if !applied[mg.Version] {
			status.Pending = append(status.Pending, mg.label())
		}
	}
	return status, nil
}

func (m *Migrator) db() (*sql.DB, error) {
	if m == nil || m.store == nil || m.store.db == nil {
		return nil, errStoreNotInitialized
	}
	return m.store.db, nil
}

func (m *Migrator) run(ctx context.Context, direction Direction, steps int) error {
	db, err := m.db()
	if err != nil {
		return err
	}
	if direction != DirectionUp && direction != DirectionDown {
		return fmt.Errorf("unsupported migration direction: %s", direction)
	}

	migrations, err := loadMigrationsFromFS(m.source)
	if err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, migrationTableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	applied, err := loadAppliedVersions(ctx, conn)
	if err != nil {
		return err
	}

	plan := planMigrations(migrations, applied, direction, steps)
	for _, mg := range plan {
		started := time.Now()
		if err := applyOne(ctx, conn, mg, direction); err != nil {
			return err
		}
		m.logger.WithFields(log.Fields{
			"migration": mg.label(),
			"direction": direction,
			"took":      time.Since(started).String(),
		}).Info("migration applied")
	}

	return nil
}

// planMigrations выбирает миграции для применения в нужном порядке.
func planMigrations(migrations []migration, applied map[int64]bool, direction Direction, steps int) []migration {
	plan := make([]migration, 0, len(migrations))
	if direction == DirectionUp {
		for _, mg := range migrations {
			if applied[mg.Version] {
				continue
			}
			plan = append(plan, mg)
			if steps > 0 && len(plan) >= steps {
				break
			}
		}
		return plan
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		mg := migrations[i]
		if !applied[mg.Version] {
			continue
		}
		plan = append(plan, mg)
		if len(plan) >= steps {
			break
		}
	}
	return plan
}

func applyOne(ctx context.Context, conn *sql.Conn, mg migration, direction Direction) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (%s %s): %w", direction, mg.label(), err)
	}

	body, record, args := mg.UpSQL, `INSERT INTO pos_schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())`, []any{mg.Version, mg.Name}
	if direction == DirectionDown {
		body, record, args = mg.DownSQL, `DELETE FROM pos_schema_migrations WHERE version = $1`, []any{mg.Version}
	}

	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute %s migration %s: %w", direction, mg.label(), err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record %s migration %s: %w", direction, mg.label(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s migration %s: %w", direction, mg.label(), err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadAppliedVersions(ctx context.Context, q queryer) (map[int64]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT version FROM pos_schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		result[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return result, nil
}

func loadMigrationsFromFS(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no migration files found")
	}

	byVersion := make(map[int64]*migration)
	for _, file := range files {
		base := filepath.Base(file)
		matches := migrationFilePattern.FindStringSubmatch(base)
		if len(matches) != 4 {
			return nil, fmt.Errorf("invalid migration file name: %s", base)
		}

		version, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", base, err)
		}
		name, direction := matches[2], Direction(matches[3])

		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", file, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("migration file is empty: %s", base)
		}

		mg, ok := byVersion[version]
		if !ok {
			mg = &migration{Version: version, Name: name}
			byVersion[version] = mg
		} else if mg.Name != name {
			return nil, fmt.Errorf("migration name mismatch for version %d: %s vs %s", version, mg.Name, name)
		}

		target := &mg.UpSQL
		if direction == DirectionDown {
			target = &mg.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", direction, version)
		}
		*target = body
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, mg := range byVersion {
		if mg.UpSQL == "" || mg.DownSQL == "" {
			return nil, fmt.Errorf("migration %s must have both up and down files", mg.label())
		}
		migrations = append(migrations, *mg)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	return migrations, nil
}
