package logging

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
)

// LogSink stores agent log entries beyond the process output
type LogSink interface {
	Log(ctx context.Context, runID, agent, message, level string, metadata map[string]interface{}) error
}

// AgentLogger is the common.AgentLogger of one agent: entries go to the
// process logger right away and to the sink in the background.
type AgentLogger struct {
	logger *log.Logger
	runID  string
	agent  string
	sink   LogSink

	pending *sync.WaitGroup
}

// NewAgentLogger derives the logger of agent from base. sink may be nil.
func NewAgentLogger(base *log.Logger, runID, agent string, sink LogSink) *AgentLogger {
	return &AgentLogger{
		logger:  base.With("agent", agent),
		runID:   runID,
		agent:   agent,
		sink:    sink,
		pending: &sync.WaitGroup{},
	}
}

func (a *AgentLogger) Log(level, message string, metadata map[string]interface{}) {
	keyvals := make([]interface{}, 0, 2*len(metadata))
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		keyvals = append(keyvals, k, metadata[k])
	}

	switch level {
	case common.LevelDebug:
		a.logger.Debug(message, keyvals...)
	case common.LevelWarning:
		a.logger.Warn(message, keyvals...)
	case common.LevelError:
		a.logger.Error(message, keyvals...)
	default:
		a.logger.Info(message, keyvals...)
	}

	if a.sink == nil {
		return
	}

	// Persist to the sink (async so the agent never waits on storage)
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.sink.Log(ctx, a.runID, a.agent, message, level, metadata); err != nil {
			a.logger.Warn("failed to persist agent log", "err", err)
		}
	}()
}

// Flush waits for every entry handed to the sink so far
func (a *AgentLogger) Flush() {
	a.pending.Wait()
}

var _ common.AgentLogger = (*AgentLogger)(nil)
