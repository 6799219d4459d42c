package tabular

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markbook/core"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	watched := NewFile(filepath.Join(dir, "teachers.xlsx"))
	ignored := NewFile(filepath.Join(dir, "marks.xlsx"))

	w, err := NewWatcher(core.NopLogger{})
	require.NoError(t, err)

	var calls int32
	require.NoError(t, w.Watch(watched.Location(), func() { atomic.AddInt32(&calls, 1) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer func() { assert.NoError(t, w.Close()) }()

	require.NoError(t, ignored.WriteTable(ctx, Table{Rows: []Row{{"A": 1}}}, "S"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	require.NoError(t, watched.WriteTable(ctx, Table{Rows: []Row{{"A": 1}}}, "S"))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) > 0 }, 2*time.Second, 10*time.Millisecond)

	before := atomic.LoadInt32(&calls)
	require.NoError(t, os.Remove(watched.Location()))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) > before }, 2*time.Second, 10*time.Millisecond)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("test")

	table, err := m.ReadTable(ctx, "Marks")
	require.NoError(t, err)
	assert.Empty(t, table.Rows)

	in := Table{Header: []string{"A"}, Rows: []Row{{"A": int64(1)}}}
	require.NoError(t, m.WriteTable(ctx, in, "Marks"))
	in.Rows[0]["A"] = int64(2) // callers cannot mutate stored rows

	table, err = m.ReadTable(ctx, "Marks")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"A": int64(1)}}, table.Rows)
	assert.Equal(t, 1, m.Writes())

	m.FailWith(os.ErrClosed, os.ErrClosed)
	_, err = m.ReadTable(ctx, "Marks")
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.ErrorIs(t, m.WriteTable(ctx, in, "Marks"), os.ErrClosed)
	assert.Equal(t, 1, m.Writes())
}
