// Package main is bookshelf-seed, a development tool that resets a bookshelf
// database or fills it with an admin account and sample items.
//
// Usage:
//
//	bookshelf-seed seed --db ./data/bookshelf.db --admin-password admin
//	bookshelf-seed clear --db ./data/bookshelf.db
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

const defaultDBPath = "./data/bookshelf.db"

var (
	dbPath   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "bookshelf-seed",
	Short:        "Seed or clear a bookshelf development database",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the sqlite database (default $DATABASE_PATH or "+defaultDBPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(seedCmd, clearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:       logger.ParseLevel(logLevel),
		Environment: "development",
	})
}

// openStore opens the database named by --db, then $DATABASE_PATH, then the default.
func openStore(log *logger.Logger) (*sqlite.Store, error) {
	path := dbPath
	if path == "" {
		path = os.Getenv("DATABASE_PATH")
	}
	if path == "" {
		path = defaultDBPath
	}

	st, err := sqlite.Open(path, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	log.Info("Opened database", "path", path)
	return st, nil
}
