package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver, registers as "pgx"
	_ "modernc.org/sqlite"             // database/sql driver, registers as "sqlite"

	"github.com/fileswarm/fileswarm/pkg/audit/migrations"
	"github.com/fileswarm/fileswarm/pkg/userservice"
)

// Config selects and configures the audit ledger's backend. It
// reuses userservice's DatabaseType/PostgresConfig shapes since both
// packages target the same Postgres-or-SQLite pairing, only differing
// in how the schema gets there: gorm AutoMigrate for userservice,
// golang-migrate for this package (see DESIGN.md).
type Config struct {
	Type       userservice.DatabaseType
	SQLitePath string
	Postgres   userservice.PostgresConfig
}

// Store is a golang-migrate-managed, raw database/sql-backed
// append-only ledger of admission decisions, grounded on
// pkg/store/metadata/postgres/migrate.go's migration-running shape.
type Store struct {
	db         *sql.DB
	insertStmt string
}

// sqlite and pgx stdlib disagree on placeholder syntax; Postgres only
// accepts its own numbered form.
const (
	insertSQLite = `INSERT INTO decisions
		(id, username, filename, group_name, strategy, enqueued_at, ready_at, started_at, queue_wait_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertPostgres = `INSERT INTO decisions
		(id, username, filename, group_name, strategy, enqueued_at, ready_at, started_at, queue_wait_ms, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
)

// NewStore opens the configured database, applies pending migrations,
// and returns a ready Store.
func NewStore(config Config) (*Store, error) {
	if config.Type == "" {
		config.Type = userservice.DatabaseTypeSQLite
	}

	var driverName, dsn, insertStmt string
	switch config.Type {
	case userservice.DatabaseTypeSQLite:
		if config.SQLitePath == "" {
			return nil, fmt.Errorf("audit: sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(config.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("audit: create database directory: %w", err)
		}
		driverName, dsn, insertStmt = "sqlite", config.SQLitePath, insertSQLite
	case userservice.DatabaseTypePostgres:
		driverName, dsn, insertStmt = "pgx", postgresDSN(config.Postgres), insertPostgres
	default:
		return nil, fmt.Errorf("audit: unsupported database type %q", config.Type)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: ping database: %w", err)
	}

	if err := runMigrations(db, config.Type); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, insertStmt: insertStmt}, nil
}

func postgresDSN(c userservice.PostgresConfig) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode)
}

func runMigrations(db *sql.DB, dbType userservice.DatabaseType) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("audit: migration source: %w", err)
	}

	var dbDriver migrate.Driver
	switch dbType {
	case userservice.DatabaseTypePostgres:
		dbDriver, err = migratepostgres.WithInstance(db, &migratepostgres.Config{
			MigrationsTable: "audit_schema_migrations",
		})
	default:
		dbDriver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{
			MigrationsTable: "audit_schema_migrations",
		})
	}
	if err != nil {
		return fmt.Errorf("audit: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(dbType), dbDriver)
	if err != nil {
		return fmt.Errorf("audit: migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("audit: run migrations: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts one decision row. Callers that need best-effort,
// non-blocking semantics should go through Sink rather than calling
// this directly from the Admission Loop.
func (s *Store) Append(ctx context.Context, r DecisionRecord) error {
	_, err := s.db.ExecContext(ctx, s.insertStmt,
		r.ID, r.Username, r.Filename, r.Group, r.Strategy,
		r.EnqueuedAt, r.ReadyAt, r.StartedAt, r.QueueWait.Milliseconds(), r.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert decision: %w", err)
	}
	return nil
}

// DecisionRecord is the persisted shape of one Admission Loop
// release.
type DecisionRecord struct {
	ID         string
	Username   string
	Filename   string
	Group      string
	Strategy   string
	EnqueuedAt time.Time
	ReadyAt    time.Time
	StartedAt  time.Time
	QueueWait  time.Duration
	RecordedAt time.Time
}
