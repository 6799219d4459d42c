//go:build windows

package tabular

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markbook/core"
)

// openLocked opens path the way spreadsheet editors do: readers allowed, no delete sharing.
func openLocked(t *testing.T, path string) {
	t.Helper()
	p, err := syscall.UTF16PtrFromString(path)
	require.NoError(t, err)
	h, err := syscall.CreateFile(p, syscall.GENERIC_READ|syscall.GENERIC_WRITE, syscall.FILE_SHARE_READ,
		nil, syscall.OPEN_EXISTING, syscall.FILE_ATTRIBUTE_NORMAL, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = syscall.CloseHandle(h) })
}

func Test_isLockViolation_renameOverOpenWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	openLocked(t, path)

	err := persist(path, []byte("new"))
	require.Error(t, err)
	assert.True(t, isBusy(err), "%#v", err)

	linkErr := &os.LinkError{Op: "rename", Old: "a.tmp", New: "a.xlsx", Err: errorAccessDenied}
	assert.True(t, isBusy(linkErr))
	assert.False(t, isBusy(&os.PathError{Op: "open", Path: "a.xlsx", Err: errorAccessDenied}))
}

func TestFile_WriteTable_retriesWhileWorkbookOpen(t *testing.T) {
	f := newTestFile(t, WithRetry(3, time.Millisecond))
	require.NoError(t, f.WriteTable(context.Background(), Table{Header: []string{"RowID"}}, "Marks"))
	openLocked(t, f.Location())

	var calls int
	mockPersist(t, func(path string, data []byte) error {
		calls++
		return persist(path, data)
	})
	err := f.WriteTable(context.Background(), Table{Header: []string{"RowID"}}, "Marks")
	assert.True(t, core.IsStoreError(err))
	assert.Equal(t, 3, calls)
}
