package postgres

import (
	"context"
	"database/sql"
	"testing"

	"quotemaker/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// go test -v --run TestCreateDatabaseStmt
func TestCreateDatabaseStmt(t *testing.T) {
	assert.Equal(t, `CREATE DATABASE "quotemaker"`, createDatabaseStmt("quotemaker"))
	assert.Equal(t, `CREATE DATABASE "a""b"`, createDatabaseStmt(`a"b`))
}

// go test -v --run TestFinishSetup_ClosesOnMigrationFailure
func TestFinishSetup_ClosesOnMigrationFailure(t *testing.T) {
	// nothing listens on port 1, so the first query fails
	sqlDB, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	client, err := finishSetup(&PostgresClient{DB: db}, config.PostgresConfig{MaxOpenConns: 2})
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.EqualError(t, sqlDB.PingContext(context.Background()), "sql: database is closed")
}
