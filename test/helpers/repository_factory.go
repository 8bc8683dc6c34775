package helpers

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/handicraft-go/internal/adapters/persistence"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// TestRepositories holds the real run store repositories for integration tests
type TestRepositories struct {
	DB           *gorm.DB
	RunRepo      *persistence.GormRunRepository
	SnapshotRepo *persistence.GormSnapshotRepository
	AgentRunRepo *persistence.GormAgentRunRepository
	AgentLogRepo *persistence.GormAgentLogRepository
}

// NewTestRepositories builds every repository on the shared test DB.
// clock drives log deduplication (usually a MockClock in tests).
func NewTestRepositories(clock shared.Clock) *TestRepositories {
	db := SharedTestDB
	return &TestRepositories{
		DB:           db,
		RunRepo:      persistence.NewGormRunRepository(db),
		SnapshotRepo: persistence.NewGormSnapshotRepository(db),
		AgentRunRepo: persistence.NewGormAgentRunRepository(db),
		AgentLogRepo: persistence.NewGormAgentLogRepository(db, clock),
	}
}
