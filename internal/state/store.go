package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/report"
)

// offlineThreshold is the number of consecutive failures after which a poll
// line is considered offline.
const offlineThreshold = 2

// QueueView is the latest queue status.
type QueueView struct {
	Status              auqa.QueueStatus
	HasStatus           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the queue endpoint failed on several polls in a
// row.
func (q QueueView) IsOffline() bool {
	return q.ConsecutiveFailures >= offlineThreshold
}

// FilesView is the held processed-file list. Version increments only when
// the list is replaced.
type FilesView struct {
	Files               []auqa.ProcessedFile
	Loaded              bool
	Version             uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// Selection is the selected file and its report. Report is nil while
// loading, when nothing is selected and when the report failed to load.
type Selection struct {
	FileID     string
	Generation uint64
	Report     *report.Canonical
	Loading    bool
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Queue     QueueView
	Files     FilesView
	Selection Selection
}

// FilesUpdate describes what UpdateFiles did.
type FilesUpdate struct {
	Applied     bool
	Changed     bool
	Reprocessed bool
	Selected    string
	Generation  uint64
}

// Store coordinates concurrent updates to the snapshot. After Stop every
// mutation is ignored so late responses are discarded.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	polled   []auqa.ProcessedFile
	epoch    uint64
	stopped  bool
}

// Stop marks the store dead.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Alive reports whether Stop has not been called.
func (s *Store) Alive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.stopped
}

// QueueEpoch identifies the current session for queue updates. ResetQueue
// advances it.
func (s *Store) QueueEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// UpdateQueue replaces the queue status wholesale. When err is non-nil the
// previous status is kept, until the failure count reaches the offline
// threshold, at which point the status is cleared to zero counts. Results
// polled under an older epoch are dropped.
func (s *Store) UpdateQueue(epoch uint64, status auqa.QueueStatus, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || epoch != s.epoch {
		return false
	}

	q := &s.snapshot.Queue
	q.LastUpdated = time.Now()
	if err != nil {
		q.LastError = err
		q.ConsecutiveFailures++
		if q.ConsecutiveFailures >= offlineThreshold {
			q.Status = auqa.QueueStatus{}
			q.HasStatus = false
		}
		return true
	}
	q.Status = status
	q.HasStatus = true
	q.LastError = nil
	q.ConsecutiveFailures = 0
	return true
}

// ResetQueue clears the queue status to zero counts and starts a new epoch.
func (s *Store) ResetQueue() {
	s.ResetQueueIf(func() bool { return true })
}

// ResetQueueIf runs change under the store lock and resets the queue when it
// returns true. A session anchor moved inside change is never observed next
// to the previous session's counts.
func (s *Store) ResetQueueIf(change func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !change() {
		return false
	}
	s.epoch++
	s.snapshot.Queue = QueueView{LastUpdated: time.Now()}
	return true
}

// Active reports whether the last known queue status has pending work.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Queue.Status.Active()
}

// UpdateFiles reconciles a polled file list into the store. On error the
// held list is kept.
func (s *Store) UpdateFiles(next []auqa.ProcessedFile, err error) FilesUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return FilesUpdate{}
	}

	f := &s.snapshot.Files
	f.LastUpdated = time.Now()
	if err != nil {
		f.LastError = err
		f.ConsecutiveFailures++
		return FilesUpdate{Applied: true}
	}
	f.LastError = nil
	f.ConsecutiveFailures = 0

	sel := s.snapshot.Selection
	update := FilesUpdate{
		Applied:    true,
		Selected:   sel.FileID,
		Generation: sel.Generation,
	}
	if f.Loaded {
		update.Reprocessed = ProcessedDateChanged(s.polled, next, sel.FileID)
	}
	s.polled = slices.Clone(next)

	list, changed := ReconcileFiles(f.Files, next)
	if changed || !f.Loaded {
		f.Files = slices.Clone(list)
		f.Version++
		update.Changed = true
	}
	f.Loaded = true
	return update
}

// Select makes id the selected file and clears the held report. Selecting
// the already-selected file deselects it. It returns the new generation and
// whether a file is now selected.
func (s *Store) Select(id string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := &s.snapshot.Selection
	sel.Generation++
	sel.Report = nil
	if id == "" || id == sel.FileID {
		sel.FileID = ""
		sel.Loading = false
		return sel.Generation, false
	}
	sel.FileID = id
	sel.Loading = true
	return sel.Generation, true
}

// Reload invalidates the selected report, keeping the selection, and returns
// the new generation.
func (s *Store) Reload() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := &s.snapshot.Selection
	if sel.FileID == "" {
		return "", sel.Generation
	}
	sel.Generation++
	sel.Report = nil
	sel.Loading = true
	return sel.FileID, sel.Generation
}

// ClearSelectionIf deselects when the selected file is among ids.
func (s *Store) ClearSelectionIf(ids []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := &s.snapshot.Selection
	if sel.FileID == "" || !slices.Contains(ids, sel.FileID) {
		return false
	}
	*sel = Selection{Generation: sel.Generation + 1}
	return true
}

// Selected returns the selected file id and generation.
func (s *Store) Selected() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Selection.FileID, s.snapshot.Selection.Generation
}

// ApplyReport stores c for the selection made at generation gen. It returns
// false and drops c when the selection has moved on or the store is stopped.
// A nil c records a failed load.
func (s *Store) ApplyReport(gen uint64, c *report.Canonical) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	sel := &s.snapshot.Selection
	if sel.Generation != gen || sel.FileID == "" {
		return false
	}
	sel.Report = c
	sel.Loading = false
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Files.Files = slices.Clone(s.snapshot.Files.Files)
	if s.snapshot.Queue.LastError != nil {
		snap.Queue.LastError = fmt.Errorf("%w", s.snapshot.Queue.LastError)
	}
	if s.snapshot.Files.LastError != nil {
		snap.Files.LastError = fmt.Errorf("%w", s.snapshot.Files.LastError)
	}
	return snap
}
