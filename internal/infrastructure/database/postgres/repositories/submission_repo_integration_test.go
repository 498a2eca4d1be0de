//go:build integration

package repositories_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/ChemCheck/internal/domain/submission"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemCheck/pkg/errors"
)

// startPostgres launches a PostgreSQL 16 container with the schema applied.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "chemcheck_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	conn, err := postgres.NewConnection(ctx, postgres.Config{
		Host:     host,
		Port:     portNum,
		Database: "chemcheck_test",
		Username: "test",
		Password: "test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	migrator, err := postgres.NewMigrator(ctx, conn.DB(), logging.NewNopLogger())
	require.NoError(t, err)
	defer migrator.Close()
	require.NoError(t, migrator.Up())

	status, err := migrator.Status()
	require.NoError(t, err)
	require.EqualValues(t, 1, status.Version)
	require.False(t, status.Dirty)
	return conn
}

func TestSubmissionRepo_Integration(t *testing.T) {
	conn := startPostgres(t)
	repo := repositories.NewPostgresSubmissionRepo(conn, logging.NewNopLogger(), nil)
	ctx := context.Background()

	first := submission.NewSubmission("H2 + O2 -> H2O", "2H2 + O2 -> 2H2O", "equation", true, "accepted", nil)
	second := submission.NewSubmission("H2 + O2 -> H2O", "H2 + O2 -> H2O2", "equation", false, "unbalanced_atoms", []string{"H2O2"})
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	assert.True(t, pkgerrors.IsCode(repo.Save(ctx, first), pkgerrors.ErrCodeConflict))

	got, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"H2O2"}, got.WrongTerms)

	list, err := repo.List(ctx, submission.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.ByReason["unbalanced_atoms"])
}
