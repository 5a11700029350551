package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/monjez/monjez/internal/config"
)

// Open builds the shared database handles from the environment: a pgx
// stdlib *sql.DB and a gorm DB over it, instrumented for tracing. When
// a slog logger is passed, SQL logs go through it.
func Open(l *slog.Logger) (*gorm.DB, *sql.DB, error) {
	var (
		dbname = os.Getenv(config.ENV_KEY_DB_DATABASE)
		dbpass = os.Getenv(config.ENV_KEY_DB_PASSWORD)
		dbuser = os.Getenv(config.ENV_KEY_DB_USER)
		dbport = os.Getenv(config.ENV_KEY_DB_PORT)
		dbhost = os.Getenv(config.ENV_KEY_DB_HOST)
	)

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbuser, dbpass, dbhost, dbport, dbname)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("open database connection: %w", err)
	}

	var gormLogger logger.Interface = logger.Default.LogMode(logger.Info)
	if l != nil {
		gormLogger = NewSlogGormLogger(l)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("open gorm database connection: %w", err)
	}

	if err := gormDB.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("enable gorm tracing: %w", err)
	}

	if m, err := strconv.Atoi(os.Getenv(config.ENV_KEY_DB_MAX_OPEN_CONNECTIONS)); err == nil && m > 0 {
		sqlDB.SetMaxOpenConns(m)
	}

	return gormDB, sqlDB, nil
}

// ConnString builds the DSN for dedicated pgx connections (the
// LISTEN/NOTIFY paths use their own connection outside the pool).
func ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv(config.ENV_KEY_DB_USER),
		os.Getenv(config.ENV_KEY_DB_PASSWORD),
		os.Getenv(config.ENV_KEY_DB_HOST),
		os.Getenv(config.ENV_KEY_DB_PORT),
		os.Getenv(config.ENV_KEY_DB_DATABASE),
	)
}
