// Package state holds the single shared record described in spec.md §3,
// reachable by every worker goroutine. Per spec.md §9 it is exposed through
// an explicit type rather than ambient globals, and per §4.1 every mutation
// of a counter or flag happens in a short method holding state_mutex (or in
// a caller's WithLock section), so the global lock order (state_mutex before
// the waitroom semaphore before any per-queue mutex) can never be taken out
// of order: these critical sections never themselves block on a queue or on
// the waitroom. The shutdown flag is an atomic and takes no lock.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// WorkerID is the logical signal-delivery address standing in for an OS pid
// (spec.md §0 / §3's controller_pid, registration_pid, doctor_pid, window2_pid).
type WorkerID string

// State is the simulation's single shared record (spec.md §3).
type State struct {
	Start time.Time
	N     int64

	// Waitroom is the counting semaphore backing inside_count/waitroom_free
	// (invariant I2). It supports the atomic two-unit acquire/release a
	// child-with-guardian needs (invariant I3, spec.md §4.7).
	Waitroom *semaphore.Weighted

	shutdown atomic.Bool // monotone flag (I8), read lock-free per §5

	mu               sync.Mutex // state_mutex
	insideCount      int64
	window2Open      bool
	doctorOnBreak    [6]bool
	totalPatients    int64
	activePatients   int64

	ControllerID   WorkerID
	RegistrationID WorkerID
	Window2ID      WorkerID
	DoctorID       [6]WorkerID
}

// New creates the shared state for a run admitting up to n patients at
// once, with start as the timestamp origin for log lines (spec.md §6).
func New(n int64, start time.Time) *State {
	return &State{
		Start:    start,
		N:        n,
		Waitroom: semaphore.NewWeighted(n),
	}
}

// IsShutdown reports the monotone shutdown flag (I8). Safe to call without
// holding any lock, per spec.md §5 ("the monotone shutdown flag ... are read
// without locks").
func (s *State) IsShutdown() bool { return s.shutdown.Load() }

// SetShutdown sets the monotone flag. Calling it more than once is a no-op;
// the flag only ever transitions 0→1 (I8).
func (s *State) SetShutdown() { s.shutdown.Store(true) }

// WithLock runs fn while holding state_mutex. fn must not block on a
// semaphore or queue operation — see the package doc's lock-order rule.
func (s *State) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// InsideCount returns the number of patients currently inside the building
// (spec.md §3). A child admitted with a guardian counts as 2 (I3).
func (s *State) InsideCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insideCount
}

// AddInsideCount adjusts inside_count by delta (positive on admission,
// negative on exit) under state_mutex, preserving I1 and I2 when paired
// correctly with a matching Waitroom acquire/release of the same size.
func (s *State) AddInsideCount(delta int64) {
	s.mu.Lock()
	s.insideCount += delta
	s.mu.Unlock()
}

// Window2Open reports the current elasticity state of the registration
// stage (I7).
func (s *State) Window2Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window2Open
}

// SetWindow2 transitions the elasticity state and records desk #2's worker
// id (empty when closing), preserving I7.
func (s *State) SetWindow2(open bool, id WorkerID) {
	s.mu.Lock()
	s.window2Open = open
	s.Window2ID = id
	s.mu.Unlock()
}

// DoctorOnBreak reports whether specialist i is currently on a ward trip
// (spec.md §3 doctor_on_break[i]).
func (s *State) DoctorOnBreak(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doctorOnBreak[i]
}

// SetDoctorOnBreak records specialist i's ward-trip state.
func (s *State) SetDoctorOnBreak(i int, onBreak bool) {
	s.mu.Lock()
	s.doctorOnBreak[i] = onBreak
	s.mu.Unlock()
}

// IncTotalPatients records a newly generated patient and returns its
// sequence number (1-based). Patient ids are ULIDs and do not use it.
func (s *State) IncTotalPatients() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalPatients++
	return s.totalPatients
}

// ActivePatients returns the number of patients the Generator currently
// believes are in flight, for the concurrent-patient cap (spec.md §4.9).
func (s *State) ActivePatients() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePatients
}

// AddActivePatients adjusts the in-flight patient counter.
func (s *State) AddActivePatients(delta int64) {
	s.mu.Lock()
	s.activePatients += delta
	s.mu.Unlock()
}

// TotalPatients returns the total number of patients ever generated.
func (s *State) TotalPatients() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPatients
}
