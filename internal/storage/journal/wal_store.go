// Package journal records executor progress in a write-ahead log so interrupted
// executions can be found after a restart.
package journal

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

const (
	DefaultDir   = "./wal/executions"
	segmentLimit = 100
	maxSegments  = 10

	executionKeyPrefix = "execution_"
)

// WALStore persists execution snapshots; the newest snapshot per execution wins.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
	now func() time.Time
}

// NewWALStore opens (or creates) the journal in dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "execution_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init execution WAL")
	}

	return &WALStore{wal: wal, now: time.Now}, nil
}

// Save appends a snapshot of exec.
func (s *WALStore) Save(exec domain.Execution) error {
	if s == nil || s.wal == nil {
		return errors.New("execution journal is not initialized")
	}
	if exec.ID == "" {
		return errors.New("execution id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exec.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(exec)
	if err != nil {
		return errors.Wrap(err, "marshal execution")
	}

	nextIndex := s.wal.CurrentIndex() + 1
	return errors.Wrapf(s.wal.Write(nextIndex, executionKeyPrefix+exec.ID, payload), "write execution %s", exec.ID)
}

// Get returns the latest snapshot of the execution with id.
func (s *WALStore) Get(id string) (domain.Execution, bool, error) {
	latest, err := s.replay()
	if err != nil {
		return domain.Execution{}, false, err
	}
	exec, ok := latest[id]
	return exec, ok, nil
}

// Unfinished returns executions whose latest snapshot is not done, oldest first.
func (s *WALStore) Unfinished() ([]domain.Execution, error) {
	latest, err := s.replay()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Execution, 0)
	for _, exec := range latest {
		if exec.Status != domain.ExecutionDone {
			out = append(out, exec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})

	return out, nil
}

func (s *WALStore) replay() (map[string]domain.Execution, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("execution journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]domain.Execution)
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, executionKeyPrefix) {
			continue
		}
		var exec domain.Execution
		if err := json.Unmarshal(msg.Value, &exec); err != nil {
			return nil, errors.Wrapf(err, "decode execution %s", msg.Key)
		}
		latest[exec.ID] = exec
	}

	return latest, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("execution journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
