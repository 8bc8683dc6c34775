package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/infrastructure/config"
	"github.com/andrescamacho/handicraft-go/internal/infrastructure/logging"
	"github.com/andrescamacho/handicraft-go/test/helpers"
)

func TestNew_WritesToFileInJSON(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "handicraft.log")
	cfg := config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: path}

	// Act
	logger, closer, err := logging.New(cfg)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("Simulation starting", "seed", 7)
	require.NoError(t, closer.Close())

	// Assert
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Simulation starting", entry["msg"])
	assert.Equal(t, float64(7), entry["seed"])
}

func TestNew_RejectsUnknownLevelAndOutput(t *testing.T) {
	_, _, err := logging.New(config.LoggingConfig{Level: "loud", Format: "text", Output: "stderr"})
	assert.Error(t, err)

	_, _, err = logging.New(config.LoggingConfig{Level: "info", Format: "text", Output: "syslog"})
	assert.Error(t, err)
}

func TestAgentLogger_WritesAndPersists(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	base := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})
	sink := helpers.NewMockAgentLogSink()
	logger := logging.NewAgentLogger(base, "run-1", "CRAFT_2", sink)

	// Act
	logger.Log(common.LevelWarning, "Workshop out of material", map[string]interface{}{"pieces": 4, "batch": 1})
	logger.Log(common.LevelDebug, "Batch ready", nil)
	logger.Flush()

	// Assert
	out := buf.String()
	assert.Contains(t, out, "agent=CRAFT_2")
	assert.Contains(t, out, "batch=1 pieces=4")
	assert.Contains(t, out, "Batch ready")

	all := sink.GetLogs("CRAFT_2", nil)
	require.Len(t, all, 2)
	assert.Equal(t, "run-1", all[0].RunID)

	level := common.LevelWarning
	warnings := sink.GetLogs("CRAFT_2", &level)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Workshop out of material", warnings[0].Message)
}

func TestAgentLogger_SinkFailureIsOnlyWarned(t *testing.T) {
	var buf bytes.Buffer
	base := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	sink := helpers.NewMockAgentLogSink()
	sink.LogErr = errors.New("disk full")
	logger := logging.NewAgentLogger(base, "run-1", "CUST_0", sink)

	logger.Log(common.LevelInfo, "Nothing left to buy", nil)
	logger.Flush()

	assert.Contains(t, buf.String(), "failed to persist agent log")
	assert.Empty(t, sink.GetLogs("CUST_0", nil))
}

func TestAgentLogger_WithoutSink(t *testing.T) {
	logger := logging.NewAgentLogger(logging.Discard(), "run-1", "ENTREPRE", nil)

	assert.NotPanics(t, func() {
		logger.Log(common.LevelError, "boom", nil)
		logger.Flush()
	})
}
