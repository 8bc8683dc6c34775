package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/adapters/persistence"
	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
	"github.com/andrescamacho/handicraft-go/test/helpers"
)

const (
	time2s = 2 * time.Second
	tick   = 5 * time.Millisecond
)

func TestAgentRunRepository_ListsInReportOrder(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	newRun(t, persistence.NewGormRunRepository(db), "run-1")
	repo := persistence.NewGormAgentRunRepository(db)
	ctx := context.Background()

	for _, rec := range []common.AgentRunRecord{
		{RunID: "run-1", Role: handicraft.RoleCraftsman, Index: 1, Status: "RETIRED"},
		{RunID: "run-1", Role: handicraft.RoleCustomer, Index: 0, Status: "RETIRED"},
		{RunID: "run-1", Role: handicraft.RoleCraftsman, Index: 0, Status: "FAILED", ExitCode: 1, Error: "boom"},
		{RunID: "run-1", Role: handicraft.RoleEntrepreneur, Index: 0, Status: "RETIRED"},
	} {
		rec := rec
		require.NoError(t, repo.Save(ctx, &rec))
	}

	// Act
	records, err := repo.ListByRun(ctx, "run-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, handicraft.RoleEntrepreneur, records[0].Role)
	assert.Equal(t, handicraft.RoleCustomer, records[1].Role)
	assert.Equal(t, handicraft.RoleCraftsman, records[2].Role)
	assert.Equal(t, 0, records[2].Index)
	assert.Equal(t, 1, records[2].ExitCode)
	assert.Equal(t, "boom", records[2].Error)
	assert.Equal(t, 1, records[3].Index)
}

func TestAgentRunRepository_SaveUpserts(t *testing.T) {
	db := helpers.NewTestDB(t)
	newRun(t, persistence.NewGormRunRepository(db), "run-1")
	repo := persistence.NewGormAgentRunRepository(db)
	ctx := context.Background()

	rec := common.AgentRunRecord{RunID: "run-1", Role: handicraft.RoleCustomer, Index: 2, Status: "RUNNING"}
	require.NoError(t, repo.Save(ctx, &rec))
	rec.Status = "RETIRED"
	require.NoError(t, repo.Save(ctx, &rec))

	records, err := repo.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "RETIRED", records[0].Status)
}

func TestAgentLogRepository_Deduplicates(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewGormAgentLogRepository(db, clock)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Log(ctx, "run-1", "CUST_0", "door shut", "INFO", nil))
	require.NoError(t, repo.Log(ctx, "run-1", "CUST_0", "door shut", "INFO", nil))
	require.NoError(t, repo.Log(ctx, "run-1", "CUST_1", "door shut", "INFO", nil))
	clock.Advance(2 * time.Second)
	require.NoError(t, repo.Log(ctx, "run-1", "CUST_0", "door shut", "WARNING", map[string]interface{}{"attempt": 3}))

	// Assert
	all, err := repo.GetLogs(ctx, "run-1", nil, nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	agent := "CUST_0"
	level := "WARNING"
	filtered, err := repo.GetLogs(ctx, "run-1", &agent, &level, 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, float64(3), filtered[0].Metadata["attempt"])
}
