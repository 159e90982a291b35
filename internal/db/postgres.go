package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"blog_backend/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxRetries = 5

const sqliteScheme = "sqlite://"

// Init connects to Postgres through the pgx stdlib driver and hands the pool
// to GORM. It retries the initial connection with a linear backoff.
// A DATABASE_URL of the form sqlite://<path> opens a local SQLite file instead.
func Init(dbCfg *config.DBConfig) (*gorm.DB, error) {
	if dsn := dbCfg.DSN(); strings.HasPrefix(dsn, sqliteScheme) {
		logrus.Warn("Using SQLite database, intended for local development only")
		return OpenSQLite(strings.TrimPrefix(dsn, sqliteScheme))
	}

	var sqlDB *sql.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		sqlDB, err = sql.Open("pgx", dbCfg.DSN())
		if err != nil {
			logrus.WithError(err).Warnf("Failed to open database connection (attempt %d/%d)", i+1, maxRetries)
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		if err = sqlDB.Ping(); err != nil {
			logrus.WithError(err).Warnf("Failed to ping database (attempt %d/%d)", i+1, maxRetries)
			if cerr := sqlDB.Close(); cerr != nil {
				logrus.WithError(cerr).Warn("Failed to close database connection")
			}
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		break
	}

	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm session: %w", err)
	}

	logrus.Info("Database connection established successfully")
	return gdb, nil
}

// Migrate creates or updates the tables backing the given models.
func Migrate(gdb *gorm.DB, models ...interface{}) error {
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logrus.WithField("models", len(models)).Info("Database schema migrated")
	return nil
}

// Close releases the pool underneath a GORM session.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection, used by the health endpoint.
func Ping(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
