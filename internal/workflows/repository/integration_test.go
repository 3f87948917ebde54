//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/storage/postgres"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

// setupPostgres starts a throwaway database with the schema applied and
// returns a pgx-backed handle, the same kind the server uses.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("kartavya"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %s", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationDB, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, postgres.MigrateUp(migrationDB))
	require.NoError(t, migrationDB.Close())

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := postgres.FromPool(pool)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProject(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`INSERT INTO projects (name, key) VALUES ('Kartavya', 'KAR') RETURNING id`).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestIntegration_WorkflowLifecycle(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	projectID := seedProject(t, db)
	repo := NewWorkflowRepository(db)

	created, err := repo.Create(ctx, &domain.Workflow{
		Name:      "Bug Flow",
		ProjectID: projectID,
		Transitions: []domain.Transition{
			{From: "Open", To: "Fixed", Name: "Fix"},
			{From: "Fixed", To: "Closed"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Open", "Fixed", "Closed"}, created.Statuses)
	assert.Equal(t, "Fixed to Closed", created.Transitions[1].Name)

	_, err = repo.Create(ctx, &domain.Workflow{Name: "Orphan", ProjectID: projectID + 100})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	list, err := repo.List(ctx, domain.ListFilter{ProjectID: projectID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	replacement := []domain.Transition{{From: "Open", To: "Closed"}}
	for i := 0; i < 2; i++ {
		created.Transitions = append([]domain.Transition(nil), replacement...)
		updated, err := repo.Update(ctx, created, true)
		require.NoError(t, err)
		require.Len(t, updated.Transitions, 1, "replacing twice leaves the same set")
		assert.Equal(t, "Open", updated.Transitions[0].From)
	}

	require.NoError(t, repo.Delete(ctx, created.ID))
	var remaining int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM workflow_transitions WHERE workflow_id = $1`, created.ID).Scan(&remaining))
	assert.Zero(t, remaining, "transitions are removed with their workflow")
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrWorkflowNotFound)

	rep, err := repo.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Healthy())
}

func TestIntegration_DefaultAssigneeTriState(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	projectID := seedProject(t, db)
	repo := NewDefaultAssigneeRepository(db)

	var userID int64
	require.NoError(t, db.QueryRow(`INSERT INTO users (firebase_uid) VALUES ('uid-1') RETURNING id`).Scan(&userID))

	da, err := repo.Upsert(ctx, projectID, "Bug", &userID, true)
	require.NoError(t, err)
	require.NotNil(t, da.AssigneeID)

	da, err = repo.Upsert(ctx, projectID, "Bug", nil, false)
	require.NoError(t, err)
	require.NotNil(t, da.AssigneeID, "omitted assignee keeps the stored one")
	assert.Equal(t, userID, *da.AssigneeID)

	var secondID int64
	require.NoError(t, db.QueryRow(`INSERT INTO users (firebase_uid) VALUES ('uid-2') RETURNING id`).Scan(&secondID))

	da, err = repo.Upsert(ctx, projectID, "Bug", &secondID, true)
	require.NoError(t, err)
	require.NotNil(t, da.AssigneeID)
	assert.Equal(t, secondID, *da.AssigneeID, "a second set replaces the assignee")

	var rows int
	var stored int64
	require.NoError(t, db.QueryRow(
		`SELECT count(*), max(assignee_id) FROM default_assignees WHERE project_id = $1 AND issue_type = 'Bug'`,
		projectID).Scan(&rows, &stored))
	assert.Equal(t, 1, rows, "upsert keeps exactly one row per (project, issue type)")
	assert.Equal(t, secondID, stored)

	da, err = repo.Upsert(ctx, projectID, "Bug", nil, true)
	require.NoError(t, err)
	assert.Nil(t, da.AssigneeID, "explicit null clears")

	missing := userID + 1000
	_, err = repo.Upsert(ctx, projectID, "Bug", &missing, true)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	list, err := repo.ListByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
