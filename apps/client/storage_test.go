package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markbook/core/teacher"
)

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := newFileStorage(path)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "missing file")

	id := teacher.Identity{TeacherID: "T001", TeacherName: "John Doe"}
	require.NoError(t, store.Save(id))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	require.NoError(t, store.Clear())
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Clear(), "clearing twice")
}

func TestFileStorage_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ok, err := newFileStorage(path).Load()
	assert.Error(t, err)
	assert.False(t, ok)
}
