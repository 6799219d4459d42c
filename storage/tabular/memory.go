package tabular

import (
	"context"
	"sync"
)

// Memory is a Store keeping tables in memory, used by tests and dry runs.
type Memory struct {
	name     string
	tables   map[string]Table
	readErr  error
	writeErr error
	writes   int

	mutex sync.RWMutex
}

var _ Store = (*Memory)(nil)

func NewMemory(name string) *Memory {
	return &Memory{name: name, tables: make(map[string]Table)}
}

func (m *Memory) Location() string { return "memory://" + m.name }

func (m *Memory) ReadTable(ctx context.Context, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.readErr != nil {
		return Table{}, m.readErr
	}
	if name == "" {
		name = DefaultSheet
	}
	return m.tables[name].Clone(), nil
}

func (m *Memory) WriteTable(ctx context.Context, table Table, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	if name == "" {
		name = DefaultSheet
	}
	m.tables[name] = table.Clone()
	m.writes++
	return nil
}

// Exists reports whether a table was ever written.
func (m *Memory) Exists() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.tables) > 0
}

// FailWith makes subsequent reads and writes return the given errors; nil restores normal behaviour.
func (m *Memory) FailWith(readErr, writeErr error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.readErr, m.writeErr = readErr, writeErr
}

// Writes returns how many successful writes the store received.
func (m *Memory) Writes() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.writes
}
