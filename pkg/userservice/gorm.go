package userservice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseType selects the GORM dialect backing a Store.
type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// PostgresConfig mirrors the teacher's control-plane store
// configuration (pkg/controlplane/store/gorm.go), trimmed to the
// fields a peer-assignment table needs.
type PostgresConfig struct {
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

func (c PostgresConfig) dsn() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	return dsn
}

// Config selects and configures the persistent Store's backend.
type Config struct {
	Type       DatabaseType
	SQLitePath string
	Postgres   PostgresConfig
}

// ApplyDefaults fills in a SQLite path under XDG_CONFIG_HOME when the
// caller didn't set one, mirroring the teacher's default-path
// resolution for its own control-plane store.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}
	if c.Type == DatabaseTypeSQLite && c.SQLitePath == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config")
		}
		c.SQLitePath = filepath.Join(configDir, "fileswarm", "userservice.db")
	}
	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 25
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 5
		}
	}
}

// Store is a gorm-backed UserService/Assigner. Use NewMemory instead
// for tests and single-process deployments that do not need
// assignments to survive a restart.
type Store struct {
	db *gorm.DB
}

var _ UserService = (*Store)(nil)
var _ Assigner = (*Store)(nil)

// NewStore opens the configured database, runs AutoMigrate for
// PeerAssignment, and returns a ready Store.
func NewStore(config Config) (*Store, error) {
	config.ApplyDefaults()

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(config.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("userservice: create database directory: %w", err)
		}
		dsn := config.SQLitePath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)
	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.dsn())
	default:
		return nil, fmt.Errorf("userservice: unsupported database type %q", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("userservice: connect: %w", err)
	}

	if config.Type == DatabaseTypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("userservice: underlying db handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	if err := db.AutoMigrate(&PeerAssignment{}); err != nil {
		return nil, fmt.Errorf("userservice: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// GroupOf returns username's persisted group, or the empty string if
// the peer has never been assigned one.
func (s *Store) GroupOf(ctx context.Context, username string) (string, error) {
	rec, err := getByField[PeerAssignment](s.db, ctx, "username", username, ErrUserNotFound)
	if err != nil {
		if err == ErrUserNotFound {
			return "", nil
		}
		return "", err
	}
	return rec.Group, nil
}

// Assign creates or updates username's group assignment.
func (s *Store) Assign(ctx context.Context, username, group string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing PeerAssignment
		err := tx.Where("username = ?", username).First(&existing).Error
		switch {
		case err == nil:
			existing.Group = group
			return tx.Save(&existing).Error
		case convertNotFoundError(err, gorm.ErrRecordNotFound) == gorm.ErrRecordNotFound:
			rec := PeerAssignment{ID: uuid.New().String(), Username: username, Group: group}
			if createErr := tx.Create(&rec).Error; createErr != nil {
				if isUniqueConstraintError(createErr) {
					return tx.Where("username = ?", username).Updates(PeerAssignment{Group: group}).Error
				}
				return createErr
			}
			return nil
		default:
			return err
		}
	})
}
