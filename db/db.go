package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database variables
var (
	Db   *gorm.DB                                            // GORM database instance
	Path = filepath.Join(os.Getenv("HOME"), ".hrgo/hrgo.db") // Default database path
)

// ConfigurePath resolves the default database path from HRGO_HOME, then
// XDG_DATA_HOME, then the home directory.
func ConfigurePath() error {
	if home := os.Getenv("HRGO_HOME"); home != "" {
		Path = filepath.Join(home, "hrgo.db")
		return nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		Path = filepath.Join(xdg, "hrgo", "hrgo.db")
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	Path = filepath.Join(home, ".hrgo", "hrgo.db")
	return nil
}

// InitDB opens the database at Path, creating its directory and tables as needed.
func InitDB() error {
	gdb, err := Open(Path)
	if err != nil {
		return err
	}
	Db = gdb
	log.Info().Str("path", Path).Msg("Database initialized successfully")
	return nil
}

// Open opens (and migrates) a SQLite database at path. ":memory:" is accepted.
func Open(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := createDBDirectory(path); err != nil {
			return nil, err
		}
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to open database")
		return nil, err
	}

	if err := migrateTables(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// GetDB returns the global connection set by InitDB.
func GetDB() *gorm.DB { return Db }

// createDBDirectory creates the directory holding the database file if it doesn't exist.
func createDBDirectory(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error().Err(err).Msg("Failed to create database directory")
			return err
		}
	}
	return nil
}

// migrateTables creates the tables if they don't exist.
func migrateTables(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&Credential{}, &Permission{}); err != nil {
		log.Error().Err(err).Msg("Failed to auto-migrate database")
		return err
	}
	return nil
}

// gormLogger keeps GORM silent unless debug logging is enabled.
func gormLogger() logger.Interface {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Silent)
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if Db == nil {
		return nil
	}
	sqlDB, err := Db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get raw database connection")
		return err
	}
	return sqlDB.Close()
}
