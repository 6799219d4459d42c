package sheets_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/storage/sheets"
	"github.com/trezcool/markbook/storage/tabular"
	"github.com/trezcool/markbook/tests"
)

func TestTeacherRepository_QueryTeachers(t *testing.T) {
	ctx := context.Background()
	store := tabular.NewMemory("teachers")
	require.NoError(t, store.WriteTable(ctx, tabular.Table{
		Header: []string{"TeacherID", "TeacherName", "PIN"},
		Rows: []tabular.Row{
			{"TeacherID": "T001", "TeacherName": "John Doe", "PIN": int64(1234)},
			{"TeacherName": "No ID", "PIN": "0000"},
			{"TeacherID": " T002 ", "TeacherName": "Jane Smith", "PIN": "5678", "AssignedSubjects": "English"},
		},
	}, testutil.TeachersSheet))
	repo := sheets.NewTeacherRepository(store, testutil.TeachersSheet)

	got, err := repo.QueryTeachers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []teacher.Teacher{
		{TeacherID: "T001", TeacherName: "John Doe", PIN: "1234"},
		{TeacherID: "T002", TeacherName: "Jane Smith", PIN: "5678", AssignedSubjects: "English"},
	}, got)
}

func TestTeacherRepository_missingFile(t *testing.T) {
	repo := sheets.NewTeacherRepository(tabular.NewFile(filepath.Join(t.TempDir(), "teachers.xlsx")), testutil.TeachersSheet)

	got, err := repo.QueryTeachers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTeacherRepository_SaveTeacher(t *testing.T) {
	ctx := context.Background()
	store := tabular.NewFile(filepath.Join(t.TempDir(), "teachers.xlsx"))
	repo := sheets.NewTeacherRepository(store, testutil.TeachersSheet)

	for _, tch := range testutil.Teachers() {
		require.NoError(t, repo.SaveTeacher(ctx, tch))
	}
	updated := testutil.Teachers()[0]
	updated.PIN = "4321"
	require.NoError(t, repo.SaveTeacher(ctx, updated))

	got, err := repo.QueryTeachers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []teacher.Teacher{updated, testutil.Teachers()[1]}, got)

	// PINs are written as text so leading zeros survive
	require.NoError(t, repo.SaveTeacher(ctx, teacher.Teacher{TeacherID: "T003", PIN: "0042"}))
	got, err = repo.QueryTeachers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0042", got[2].PIN)
}

func TestTeacherRepository_cache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "teachers.xlsx")
	store := tabular.NewFile(path)
	testutil.SeedTeachers(t, store, testutil.Teachers()[0])

	watcher, err := tabular.NewWatcher(core.NopLogger{})
	require.NoError(t, err)
	defer watcher.Close()

	repo := sheets.NewTeacherRepository(store, testutil.TeachersSheet)
	require.NoError(t, repo.EnableCache(watcher))

	got, err := repo.QueryTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// another writer (e.g. the admin tool) replaces the workbook; the watcher is not running yet
	other := tabular.NewFile(path)
	testutil.SeedTeachers(t, other, testutil.Teachers()...)

	got, err = repo.QueryTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1, "served from cache")

	repo.Invalidate()
	got, err = repo.QueryTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	watcher.Start(ctx)
	testutil.SeedTeachers(t, other, testutil.Teachers()[1])
	assert.Eventually(t, func() bool {
		got, err := repo.QueryTeachers(ctx)
		return err == nil && len(got) == 1 && got[0].TeacherID == "T002"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestTeacherRepository_Authenticate(t *testing.T) {
	ctx := context.Background()
	store := tabular.NewFile(filepath.Join(t.TempDir(), "teachers.xlsx"))
	testutil.SeedTeachers(t, store, testutil.Teachers()...)
	svc := teacher.NewService(sheets.NewTeacherRepository(store, testutil.TeachersSheet), core.NopLogger{})

	id, err := svc.Authenticate(ctx, "T001", "1234")
	require.NoError(t, err)
	assert.Equal(t, teacher.Identity{TeacherID: "T001", TeacherName: "John Doe"}, id)

	_, err = svc.Authenticate(ctx, "T001", "5678")
	assert.ErrorIs(t, err, teacher.ErrNotFound)
}
