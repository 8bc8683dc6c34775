package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// SnapshotRecorder is a state observer that streams every snapshot of a run
// to the snapshot repository. Record only hands the snapshot to a background
// writer, so the gate is never held across a database round trip; a failed
// write is reported by the next Record and by Close.
type SnapshotRecorder struct {
	repo      common.SnapshotRepository
	runID     string
	batchSize int

	queue  chan handicraft.Snapshot
	done   chan struct{}
	sendMu sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error
}

// NewSnapshotRecorder starts the background writer for runID
func NewSnapshotRecorder(repo common.SnapshotRepository, runID string, buffer, batchSize int) *SnapshotRecorder {
	if buffer < 1 {
		buffer = 1024
	}
	if batchSize < 1 {
		batchSize = 64
	}
	r := &SnapshotRecorder{
		repo:      repo,
		runID:     runID,
		batchSize: batchSize,
		queue:     make(chan handicraft.Snapshot, buffer),
		done:      make(chan struct{}),
	}
	go r.write()
	return r
}

// Record implements handicraft.StateObserver
func (r *SnapshotRecorder) Record(s handicraft.Snapshot) error {
	if err := r.Err(); err != nil {
		return err
	}

	r.sendMu.RLock()
	defer r.sendMu.RUnlock()
	if r.closed {
		return errors.New("snapshot recorder is closed")
	}
	r.queue <- s
	return nil
}

// Err returns the first write failure, if any
func (r *SnapshotRecorder) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Close flushes everything recorded so far and stops the writer
func (r *SnapshotRecorder) Close(ctx context.Context) error {
	r.sendMu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.sendMu.Unlock()

	select {
	case <-r.done:
	case <-ctx.Done():
		return fmt.Errorf("snapshot recorder did not drain: %w", ctx.Err())
	}
	return r.Err()
}

func (r *SnapshotRecorder) write() {
	defer close(r.done)

	batch := make([]handicraft.Snapshot, 0, r.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.repo.SaveBatch(ctx, r.runID, batch); err != nil {
			r.fail(err)
		}
		batch = batch[:0]
	}

	for s := range r.queue {
		batch = append(batch, s)
		// take whatever else is already queued before hitting the database
	drain:
		for len(batch) < r.batchSize {
			select {
			case next, ok := <-r.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		flush()
	}
}

func (r *SnapshotRecorder) fail(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if r.err == nil {
		r.err = fmt.Errorf("failed to persist snapshots of run %s: %w", r.runID, err)
	}
}

var _ handicraft.StateObserver = (*SnapshotRecorder)(nil)
