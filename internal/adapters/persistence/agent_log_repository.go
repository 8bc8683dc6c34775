package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// AgentLogEntry is one persisted line of an agent's log
type AgentLogEntry struct {
	ID        int
	RunID     string
	Agent     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormAgentLogRepository stores agent logs with GORM. Identical messages
// from the same agent within the dedup window are stored once.
type GormAgentLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: runID|agent|message
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormAgentLogRepository creates a new agent log repository.
// If clock is nil, uses RealClock.
func NewGormAgentLogRepository(db *gorm.DB, clock shared.Clock) *GormAgentLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormAgentLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes a log entry with time-windowed deduplication
func (r *GormAgentLogRepository) Log(ctx context.Context, runID, agent, message, level string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := runID + "|" + agent + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	entry := &AgentLogModel{
		RunID:     runID,
		Agent:     agent,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to insert agent log: %w", err)
	}
	return nil
}

// cleanupDedupCache drops entries older than the window. Caller holds dedupMu.
func (r *GormAgentLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs retrieves the logs of a run, newest first, optionally narrowed to
// one agent and one level
func (r *GormAgentLogRepository) GetLogs(ctx context.Context, runID string, agent, level *string, limit int) ([]AgentLogEntry, error) {
	var models []AgentLogModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if agent != nil {
		query = query.Where("agent = ?", *agent)
	}
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	query = query.Order("timestamp DESC, id DESC").Limit(limit)

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list agent logs: %w", err)
	}

	entries := make([]AgentLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = AgentLogEntry{
			ID:        model.ID,
			RunID:     model.RunID,
			Agent:     model.Agent,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}
