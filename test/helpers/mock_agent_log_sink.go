package helpers

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/handicraft-go/internal/adapters/persistence"
)

// MockAgentLogSink is an in-memory agent log store for testing
type MockAgentLogSink struct {
	mu     sync.Mutex
	Logs   map[string][]persistence.AgentLogEntry // key: agent name
	LogErr error
}

// NewMockAgentLogSink creates a new mock agent log sink
func NewMockAgentLogSink() *MockAgentLogSink {
	return &MockAgentLogSink{
		Logs: make(map[string][]persistence.AgentLogEntry),
	}
}

// Log keeps the entry in memory
func (m *MockAgentLogSink) Log(ctx context.Context, runID, agent, message, level string, metadata map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LogErr != nil {
		return m.LogErr
	}

	m.Logs[agent] = append(m.Logs[agent], persistence.AgentLogEntry{
		ID:        len(m.Logs[agent]) + 1,
		RunID:     runID,
		Agent:     agent,
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Metadata:  metadata,
	})
	return nil
}

// GetLogs returns the entries of agent, optionally only those at level
func (m *MockAgentLogSink) GetLogs(agent string, level *string) []persistence.AgentLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := make([]persistence.AgentLogEntry, 0)
	for _, entry := range m.Logs[agent] {
		if level != nil && entry.Level != *level {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}
