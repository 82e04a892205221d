package persistence

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dashprint/backend/internal/infrastructure/config"
	"github.com/dashprint/backend/internal/infrastructure/logger"
	"github.com/dashprint/backend/internal/infrastructure/persistence/models"
	"github.com/dashprint/backend/internal/infrastructure/telemetry"
)

// Database holds the database connection
type Database struct {
	DB *gorm.DB
}

// Option customizes a connection before it is first used
type Option func(db *gorm.DB) error

// WithTracing registers the otelgorm based tracing plugin
func WithTracing(plugin *telemetry.DBTracingPlugin) Option {
	return func(db *gorm.DB) error {
		if err := plugin.Register(db); err != nil {
			return fmt.Errorf("failed to register database tracing: %w", err)
		}
		return nil
	}
}

// NewDatabase creates a new database connection with GORM logging disabled
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	return open(cfg, gormlogger.Default.LogMode(gormlogger.Silent), opts)
}

// NewDatabaseWithLogger creates a new database connection that logs SQL
// through zap at the given GORM level.
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...Option) (*Database, error) {
	return open(cfg, logger.NewGormLogger(zapLogger, level, 200*time.Millisecond), opts)
}

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func open(cfg *config.DatabaseConfig, gormLogger gormlogger.Interface, opts []Option) (*Database, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver != "sqlite",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, opt := range opts {
		if err := opt(db); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// one writer, and ":memory:" databases are per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// AutoMigrate creates the print tables from the GORM models. Postgres
// deployments use the SQL migrations instead; this serves sqlite.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(
		&models.DashboardModel{},
		&models.DashboardPageModel{},
		&models.WidgetModel{},
		&models.ProfileModel{},
	)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
