package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/adapters/persistence"
	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/test/helpers"
)

func newRun(t *testing.T, repo *persistence.GormRunRepository, id string) *common.RunRecord {
	t.Helper()
	run := &common.RunRecord{
		ID:   id,
		Seed: 1<<63 + 5,
		Parameters: handicraft.Parameters{
			Customers:         3,
			Craftsmen:         3,
			StoreroomCapacity: 4,
			LowWaterMark:      2,
			PieceSize:         1,
			Schedule:          []int{5, 5, 5, 6},
		},
		Status:    "RUNNING",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), run))
	return run
}

func TestRunRepository_CreateAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	run := newRun(t, repo, "run-1")

	// Act
	found, err := repo.FindByID(context.Background(), "run-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, run.Seed, found.Seed)
	assert.Equal(t, run.Parameters, found.Parameters)
	assert.Equal(t, "RUNNING", found.Status)
	assert.True(t, run.StartedAt.Equal(found.StartedAt))
	assert.Nil(t, found.FinishedAt)
}

func TestRunRepository_Finish(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	newRun(t, repo, "run-2")
	finishedAt := time.Date(2026, 1, 2, 3, 5, 0, 0, time.UTC)

	// Act
	err := repo.Finish(context.Background(), "run-2", "FAILED", finishedAt, errors.New("customer 1 failed"))

	// Assert
	require.NoError(t, err)
	found, err := repo.FindByID(context.Background(), "run-2")
	require.NoError(t, err)
	assert.Equal(t, "FAILED", found.Status)
	assert.Equal(t, "customer 1 failed", found.Error)
	require.NotNil(t, found.FinishedAt)
	assert.True(t, finishedAt.Equal(*found.FinishedAt))
}

func TestRunRepository_NotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Error(t, err)

	err = repo.Finish(context.Background(), "missing", "RETIRED", time.Now(), nil)
	assert.Error(t, err)
}
