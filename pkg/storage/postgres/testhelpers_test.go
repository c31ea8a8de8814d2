package postgres_test

import (
	"os"
	"testing"

	"quotemaker/pkg/storage/postgres"

	"github.com/stretchr/testify/require"
)

// newTestClient connects to QUOTEMAKER_TEST_POSTGRES_DSN or skips the test.
func newTestClient(t *testing.T) *postgres.PostgresClient {
	t.Helper()
	dsn := os.Getenv("QUOTEMAKER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("QUOTEMAKER_TEST_POSTGRES_DSN not set")
	}

	client, err := postgres.NewClient(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.AutoMigrateQuoteRecord())
	return client
}
