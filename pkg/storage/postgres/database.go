package postgres

import (
	"database/sql"
	"fmt"

	"quotemaker/config"

	"github.com/lib/pq"
)

// CreateDatabase connects to the server's maintenance database and creates cfg.DBName
// if it doesn't exist.
func CreateDatabase(cfg config.PostgresConfig, env string) error {
	admin := cfg
	admin.DBName = "postgres"

	db, err := sql.Open("postgres", admin.DSN(env))
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer db.Close()

	// Check if database exists
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1);`
	if err := db.QueryRow(query, cfg.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("check db exists failed: %w", err)
	}

	if exists {
		return nil // DB already exists
	}

	_, err = db.Exec(createDatabaseStmt(cfg.DBName))
	if err != nil {
		return fmt.Errorf("create db failed: %w", err)
	}

	return nil
}

// createDatabaseStmt quotes name; identifiers cannot be bound as parameters.
func createDatabaseStmt(name string) string {
	return "CREATE DATABASE " + pq.QuoteIdentifier(name)
}
