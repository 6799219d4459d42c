// Package session is the client-side state machine driving a grading session:
// LoggedOut -> Dashboard -> Entry -> Complete.
package session

import (
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
)

type Kind int

// states
const (
	KindLoggedOut Kind = iota
	KindDashboard
	KindEntry
	KindComplete
)

func (k Kind) String() string {
	switch k {
	case KindDashboard:
		return "dashboard"
	case KindEntry:
		return "entry"
	case KindComplete:
		return "complete"
	default:
		return "logged out"
	}
}

// State is one of LoggedOut, Dashboard, Entry or Complete.
type State interface {
	Kind() Kind
	isState()
}

type LoggedOut struct{}

// Dashboard shows the master list of pending records grouped by class.
type Dashboard struct {
	Teacher teacher.Identity
	All     []marks.Record
}

// Entry walks the working list of one class. Working is never empty.
type Entry struct {
	Teacher teacher.Identity
	All     []marks.Record
	Class   string
	Working []marks.Record
	Cursor  int
}

// Complete is reached when the working list of Class has been fully graded.
type Complete struct {
	Teacher teacher.Identity
	All     []marks.Record
	Class   string
}

func (LoggedOut) Kind() Kind { return KindLoggedOut }
func (Dashboard) Kind() Kind { return KindDashboard }
func (Entry) Kind() Kind     { return KindEntry }
func (Complete) Kind() Kind  { return KindComplete }

func (LoggedOut) isState() {}
func (Dashboard) isState() {}
func (Entry) isState()     {}
func (Complete) isState()  {}

// newEntry returns false when class has no record in all.
func newEntry(id teacher.Identity, all []marks.Record, class string) (Entry, bool) {
	var working []marks.Record
	for _, r := range all {
		if r.ClassKey() == class {
			working = append(working, r)
		}
	}
	if len(working) == 0 {
		return Entry{}, false
	}
	return Entry{Teacher: id, All: all, Class: class, Working: working}, true
}

// Current is the record under the cursor.
func (e Entry) Current() marks.Record { return e.Working[e.Cursor] }

// Position is the 1-based index of the cursor.
func (e Entry) Position() int { return e.Cursor + 1 }

// identityOf returns the teacher of a logged in state.
func identityOf(s State) (teacher.Identity, bool) {
	switch st := s.(type) {
	case Dashboard:
		return st.Teacher, true
	case Entry:
		return st.Teacher, true
	case Complete:
		return st.Teacher, true
	default:
		return teacher.Identity{}, false
	}
}

func masterOf(s State) []marks.Record {
	switch st := s.(type) {
	case Dashboard:
		return st.All
	case Entry:
		return st.All
	case Complete:
		return st.All
	default:
		return nil
	}
}

func without(records []marks.Record, rowID int) []marks.Record {
	out := make([]marks.Record, 0, len(records))
	for _, r := range records {
		if r.RowID != rowID {
			out = append(out, r)
		}
	}
	return out
}

// withoutRecord drops rowID from the master list of a logged in state.
func withoutRecord(s State, rowID int) State {
	switch st := s.(type) {
	case Dashboard:
		st.All = without(st.All, rowID)
		return st
	case Complete:
		st.All = without(st.All, rowID)
		return st
	case Entry:
		st.All = without(st.All, rowID)
		return st
	default:
		return s
	}
}
