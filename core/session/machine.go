package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
)

var (
	// errors
	ErrInvalidTransition = errors.New("action not allowed in the current state")
	ErrBusy              = errors.New("a submission is already in progress")
	ErrEmptyClass        = errors.New("No students in this class!")
	ErrMissingCredential = errors.New("Teacher ID and PIN are required")
)

// RefreshPolicy decides what the dashboard shows when coming back from entry.
type RefreshPolicy string

const (
	// RefreshKeep shows the locally updated master list.
	RefreshKeep RefreshPolicy = "keep"
	// RefreshRefetch reloads the pending records from the server.
	RefreshRefetch RefreshPolicy = "refetch"
)

func ParseRefreshPolicy(s string) (RefreshPolicy, error) {
	switch p := RefreshPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", RefreshKeep:
		return RefreshKeep, nil
	case RefreshRefetch:
		return p, nil
	default:
		return "", fmt.Errorf("unknown refresh policy %q", s)
	}
}

type (
	// Backend is the submission service as seen by the client.
	Backend interface {
		Login(ctx context.Context, teacherID, pin string) (teacher.Identity, error)
		ListPending(ctx context.Context, teacherID string) ([]marks.Record, error)
		Submit(ctx context.Context, rowID int, obtained float64) (marks.Record, error)
	}

	// Storage keeps the logged in identity across client restarts.
	Storage interface {
		// Load returns false when no identity is stored.
		Load() (teacher.Identity, bool, error)
		Save(id teacher.Identity) error
		Clear() error
	}
)

// Machine holds the session state. Its methods are safe for concurrent use; backend calls
// are made without holding the lock.
type Machine struct {
	backend Backend
	storage Storage
	policy  RefreshPolicy
	logger  core.Logger

	mutex      sync.Mutex
	state      State
	submitting bool
}

func NewMachine(backend Backend, storage Storage, policy RefreshPolicy, logger core.Logger) *Machine {
	if policy == "" {
		policy = RefreshKeep
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Machine{
		backend: backend,
		storage: storage,
		policy:  policy,
		logger:  logger,
		state:   LoggedOut{},
	}
}

func (m *Machine) Current() State {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.state
}

// Submitting reports whether a submission is in flight.
func (m *Machine) Submitting() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.submitting
}

// Restore resumes a stored session. Without a stored identity the machine stays LoggedOut.
func (m *Machine) Restore(ctx context.Context) (State, error) {
	if st := m.Current(); st.Kind() != KindLoggedOut {
		return st, ErrInvalidTransition
	}
	id, ok, err := m.storage.Load()
	if err != nil {
		m.logger.Warn("could not load the stored session", err)
		return m.Current(), err
	}
	if !ok {
		return m.Current(), nil
	}
	return m.enterDashboard(ctx, id, nil)
}

// Login authenticates the teacher, stores the identity and loads the master list.
// A failed login leaves the machine LoggedOut.
func (m *Machine) Login(ctx context.Context, teacherID, pin string) (State, error) {
	if st := m.Current(); st.Kind() != KindLoggedOut {
		return st, ErrInvalidTransition
	}
	teacherID = core.CleanString(teacherID)
	if teacherID == "" || pin == "" {
		return m.Current(), ErrMissingCredential
	}

	id, err := m.backend.Login(ctx, teacherID, pin)
	if err != nil {
		return m.Current(), err
	}
	if err = m.storage.Save(id); err != nil {
		m.logger.Warn("could not store the session", err, id)
	}
	return m.enterDashboard(ctx, id, nil)
}

// enterDashboard moves to Dashboard with the pending records of id. When loading fails the
// dashboard keeps fallback and the error is returned; Refresh retries.
func (m *Machine) enterDashboard(ctx context.Context, id teacher.Identity, fallback []marks.Record) (State, error) {
	all, err := m.backend.ListPending(ctx, id.TeacherID)
	if err != nil {
		all = fallback
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.state = Dashboard{Teacher: id, All: all}
	return m.state, err
}

// Refresh reloads the master list from the server while on the dashboard.
func (m *Machine) Refresh(ctx context.Context) (State, error) {
	st := m.Current()
	dash, ok := st.(Dashboard)
	if !ok {
		return st, ErrInvalidTransition
	}
	return m.enterDashboard(ctx, dash.Teacher, dash.All)
}

// Logout clears the stored identity; it is allowed from any state.
func (m *Machine) Logout() error {
	m.mutex.Lock()
	m.state = LoggedOut{}
	m.mutex.Unlock()
	return m.storage.Clear()
}

// ClassCounts groups the master list by class, sorted by class.
func (m *Machine) ClassCounts() []marks.ClassCount {
	return marks.CountByClass(masterOf(m.Current()))
}

// SelectClass starts entry for class. A class without pending records is refused.
func (m *Machine) SelectClass(class string) (State, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	dash, ok := m.state.(Dashboard)
	if !ok {
		return m.state, ErrInvalidTransition
	}
	entry, ok := newEntry(dash.Teacher, dash.All, class)
	if !ok {
		return m.state, ErrEmptyClass
	}
	m.state = entry
	return m.state, nil
}

// Submit grades the record under the cursor with the typed marks. Invalid input is rejected
// before any request. On success the record leaves both lists and the cursor stays on the next
// record (wrapping to the first); on failure nothing changes.
func (m *Machine) Submit(ctx context.Context, input string) (State, error) {
	m.mutex.Lock()
	entry, ok := m.state.(Entry)
	if !ok {
		m.mutex.Unlock()
		return m.state, ErrInvalidTransition
	}
	if m.submitting {
		m.mutex.Unlock()
		return m.state, ErrBusy
	}
	rec := entry.Current()
	obtained, err := ParseMarks(input, rec.MaxMarks(marks.DefaultTotalMarks))
	if err != nil {
		m.mutex.Unlock()
		return m.state, err
	}
	m.submitting = true
	m.mutex.Unlock()

	_, err = m.backend.Submit(ctx, rec.RowID, obtained)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.submitting = false
	if err != nil {
		return m.state, err
	}

	// the session may have moved on while the request was in flight
	current, ok := m.state.(Entry)
	if !ok {
		m.state = withoutRecord(m.state, rec.RowID)
		return m.state, nil
	}
	all := without(current.All, rec.RowID)
	working := without(current.Working, rec.RowID)
	if len(working) == 0 {
		m.state = Complete{Teacher: current.Teacher, All: all, Class: current.Class}
		return m.state, nil
	}
	cursor := current.Cursor
	if cursor >= len(working) {
		cursor = 0
	}
	m.state = Entry{Teacher: current.Teacher, All: all, Class: current.Class, Working: working, Cursor: cursor}
	return m.state, nil
}

// Back returns to the dashboard from Entry or Complete, following the refresh policy.
// It is refused while a submission is in flight.
func (m *Machine) Back(ctx context.Context) (State, error) {
	m.mutex.Lock()
	st, busy := m.state, m.submitting
	m.mutex.Unlock()
	if k := st.Kind(); k != KindEntry && k != KindComplete {
		return st, ErrInvalidTransition
	}
	if busy {
		return st, ErrBusy
	}
	id, _ := identityOf(st)

	if m.policy == RefreshRefetch {
		return m.enterDashboard(ctx, id, masterOf(st))
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.state = Dashboard{Teacher: id, All: masterOf(st)}
	return m.state, nil
}
