package pidfile_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireAndRelease(t *testing.T) {
	// Arrange
	pf := pidfile.ForStateLog(filepath.Join(t.TempDir(), "shop.log"))

	// Act
	require.NoError(t, pf.Acquire())

	// Assert
	data, err := os.ReadFile(pf.Path())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(os.Getpid()), strings.TrimSpace(string(data)))
	assert.True(t, strings.HasSuffix(pf.Path(), "shop.log.pid"))

	require.NoError(t, pf.Release())
	_, err = os.Stat(pf.Path())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, pf.Release(), "releasing twice is harmless")
}

func TestPIDFile_HeldByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log.pid")
	// the parent of the test binary is alive for the whole test
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getppid())), 0o644))

	err := pidfile.New(path).Acquire()

	var inUse *pidfile.InUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, os.Getppid(), inUse.PID)
}

func TestPIDFile_TakesOverGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid\n"), 0o644))

	require.NoError(t, pidfile.New(path).Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(os.Getpid()), strings.TrimSpace(string(data)))
}
