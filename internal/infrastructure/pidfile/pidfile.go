package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// InUseError reports a PID file held by a live process
type InUseError struct {
	Path string
	PID  int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s is held by a running process (PID %d)", e.Path, e.PID)
}

// PIDFile marks a resource as owned by this process for as long as the file
// exists. The state log uses it so two runs never write the same log.
type PIDFile struct {
	path string
}

// New creates a PID file manager for path
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// ForStateLog returns the PID file guarding the state log at logPath
func ForStateLog(logPath string) *PIDFile {
	return New(logPath + ".pid")
}

// Path returns the location of the PID file
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current PID. A file left behind by a process that is
// gone, or one that cannot be parsed, is taken over.
func (p *PIDFile) Acquire() error {
	data, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		if pid, convErr := strconv.Atoi(strings.TrimSpace(string(data))); convErr == nil && pid != os.Getpid() && isProcessRunning(pid) {
			return &InUseError{Path: p.path, PID: pid}
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	if err := os.WriteFile(p.path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isProcessRunning probes pid with signal 0
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// FindProcess always succeeds on Unix
	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// exists, owned by someone else
		return true
	default:
		return false
	}
}
