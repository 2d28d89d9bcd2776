package migrations

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@localhost:5432/db?sslmode=disable", want: "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{in: "postgresql://u:p@localhost/db", want: "pgx5://u:p@localhost/db"},
		{in: "pgx5://u:p@localhost/db", want: "pgx5://u:p@localhost/db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migrateURL(tt.in))
		})
	}
}

func getTestDB(t *testing.T) (string, *sql.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return dsn, db
}

func TestRunMigrations(t *testing.T) {
	dsn, db := getTestDB(t)

	require.NoError(t, Run(dsn))

	for _, table := range []string{
		"users", "blog_posts", "gallery_items", "projects", "comments",
		"testimonials", "newsletter_subscribers", "contact_messages", "analytics",
	} {
		var exists bool
		err := db.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}

	_, err := db.Exec(`INSERT INTO users (email, password_hash, role) VALUES ('x@y.z', 'h', 'owner')`)
	assert.Error(t, err, "role outside the enumeration must be rejected")
}

func TestMigrationIdempotency(t *testing.T) {
	dsn, db := getTestDB(t)

	require.NoError(t, Run(dsn))
	_, err := db.Exec(`INSERT INTO users (email, password_hash, role) VALUES ('admin@example.com', 'h', 'admin')`)
	require.NoError(t, err)

	require.NoError(t, Run(dsn))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count, "re-running migrations must keep existing rows")
}
