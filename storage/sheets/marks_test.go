package sheets_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/storage/sheets"
	"github.com/trezcool/markbook/storage/tabular"
	"github.com/trezcool/markbook/tests"
)

func newMarksFile(t *testing.T) *tabular.File {
	return tabular.NewFile(filepath.Join(t.TempDir(), "marks.xlsx"), tabular.WithRetry(3, time.Millisecond))
}

func setupMarks(t *testing.T, store tabular.Store) marks.Repository {
	testutil.SeedRecords(t, store, testutil.Records()...)
	return sheets.NewMarksRepository(store, testutil.MarksSheet, marks.DefaultGrading())
}

func TestMarksRepository_ListPending(t *testing.T) {
	ctx := context.Background()
	repo := setupMarks(t, newMarksFile(t))

	tests := []struct {
		teacherID string
		want      []int
	}{
		{teacherID: "T001", want: []int{1, 2, 3, 4}},
		{teacherID: "T002", want: []int{5}},
		{teacherID: "T003", want: []int{}},
		{teacherID: "t001", want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.teacherID, func(t *testing.T) {
			got, err := repo.ListPending(ctx, tt.teacherID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, testutil.RowIDs(got))
			for _, rec := range got {
				assert.Equal(t, tt.teacherID, rec.TeacherID)
			}
		})
	}
}

func TestMarksRepository_ListPending_recordFields(t *testing.T) {
	repo := setupMarks(t, newMarksFile(t))

	got, err := repo.ListPending(context.Background(), "T002")
	require.NoError(t, err)
	want := []marks.Record{testutil.Records()[4]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListPending() mismatch (-want +got):\n%s", diff)
	}
}

func TestMarksRepository_missingFile(t *testing.T) {
	ctx := context.Background()
	repo := sheets.NewMarksRepository(newMarksFile(t), testutil.MarksSheet, marks.DefaultGrading())

	pending, err := repo.ListPending(ctx, "T001")
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = repo.SubmitOnce(ctx, 1, 50)
	require.Error(t, err)
	assert.True(t, core.IsStoreError(err))
}

func TestMarksRepository_SubmitOnce(t *testing.T) {
	tests := []struct {
		name       string
		rowID      int
		obtained   float64
		wantResult string
	}{
		{name: "pass", rowID: 1, obtained: 85, wantResult: marks.ResultPass},
		{name: "pass at boundary", rowID: 2, obtained: 35, wantResult: marks.ResultPass},
		{name: "fail below boundary", rowID: 3, obtained: 34.9, wantResult: marks.ResultFail},
		{name: "zero is a mark", rowID: 4, obtained: 0, wantResult: marks.ResultFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newMarksFile(t)
			repo := setupMarks(t, store)

			before := time.Now().UTC().Add(-time.Second)
			rec, err := repo.SubmitOnce(ctx, tt.rowID, tt.obtained)
			require.NoError(t, err)

			assert.Equal(t, tt.rowID, rec.RowID)
			assert.Equal(t, tt.wantResult, rec.Result)
			assert.True(t, rec.Submitted)
			require.NotNil(t, rec.ObtainedMarks)
			assert.Equal(t, tt.obtained, *rec.ObtainedMarks)
			at, err := time.Parse(time.RFC3339, rec.SubmittedAt)
			require.NoError(t, err)
			assert.True(t, at.After(before), "SubmittedAt %s", rec.SubmittedAt)

			// persisted
			all, err := repo.QueryRecords(ctx)
			require.NoError(t, err)
			require.Len(t, all, 5)
			for _, r := range all {
				if r.RowID == tt.rowID {
					assert.Equal(t, rec, r)
				} else {
					assert.False(t, r.Submitted, "RowID %d", r.RowID)
				}
			}

			pending, err := repo.ListPending(ctx, "T001")
			require.NoError(t, err)
			assert.NotContains(t, testutil.RowIDs(pending), tt.rowID)
			assert.Len(t, pending, 3)
		})
	}
}

func TestMarksRepository_SubmitOnce_idempotent(t *testing.T) {
	ctx := context.Background()
	store := tabular.NewMemory("marks")
	repo := setupMarks(t, store)

	first, err := repo.SubmitOnce(ctx, 1, 85)
	require.NoError(t, err)
	writes := store.Writes()

	for _, again := range []float64{90, 85, 0} {
		_, err = repo.SubmitOnce(ctx, 1, again)
		assert.ErrorIs(t, err, marks.ErrAlreadySubmitted)
	}
	assert.Equal(t, writes, store.Writes(), "rejected submissions must not rewrite the table")

	all, err := repo.QueryRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, all[0])
}

func TestMarksRepository_SubmitOnce_notFound(t *testing.T) {
	store := tabular.NewMemory("marks")
	repo := setupMarks(t, store)
	writes := store.Writes()

	_, err := repo.SubmitOnce(context.Background(), 42, 10)
	assert.ErrorIs(t, err, marks.ErrNotFound)
	assert.Equal(t, writes, store.Writes())
}

func TestMarksRepository_SubmitOnce_looseCells(t *testing.T) {
	ctx := context.Background()
	store := tabular.NewMemory("marks")
	require.NoError(t, store.WriteTable(ctx, tabular.Table{
		Header: []string{"RowID", "TeacherID", "TotalMarks", "Submitted", "Remarks"},
		Rows: []tabular.Row{
			{"RowID": "1", "TeacherID": "T001", "TotalMarks": "", "Submitted": "FALSE", "Remarks": "keep me"},
			{"RowID": 2.0, "TeacherID": "T001", "TotalMarks": int64(20), "Submitted": "True"},
			{"TeacherID": "T001"},
		},
	}, testutil.MarksSheet))
	repo := sheets.NewMarksRepository(store, testutil.MarksSheet, marks.DefaultGrading())

	pending, err := repo.ListPending(ctx, "T001")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, testutil.RowIDs(pending))

	rec, err := repo.SubmitOnce(ctx, 1, 35)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rec.TotalMarks)
	assert.Equal(t, marks.ResultPass, rec.Result)

	_, err = repo.SubmitOnce(ctx, 2, 10)
	assert.ErrorIs(t, err, marks.ErrAlreadySubmitted)

	table, err := store.ReadTable(ctx, testutil.MarksSheet)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "keep me", table.Rows[0]["Remarks"])
	assert.Equal(t, true, table.Rows[0]["Submitted"])
	assert.Equal(t, tabular.Row{"TeacherID": "T001"}, table.Rows[2])
}

func TestMarksRepository_SubmitOnce_storeErrors(t *testing.T) {
	ctx := context.Background()
	store := tabular.NewMemory("marks")
	repo := setupMarks(t, store)
	storeErr := core.NewStoreError("write", store.Location(), assert.AnError)

	store.FailWith(nil, storeErr)
	_, err := repo.SubmitOnce(ctx, 1, 50)
	assert.ErrorIs(t, err, storeErr)

	store.FailWith(storeErr, nil)
	_, err = repo.ListPending(ctx, "T001")
	assert.ErrorIs(t, err, storeErr)

	// nothing was persisted: the record is still gradable
	store.FailWith(nil, nil)
	_, err = repo.SubmitOnce(ctx, 1, 50)
	assert.NoError(t, err)
}

func TestMarksRepository_SubmitOnce_concurrent(t *testing.T) {
	ctx := context.Background()
	repo := setupMarks(t, newMarksFile(t))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(marksVal float64) {
			defer wg.Done()
			_, err := repo.SubmitOnce(ctx, 2, marksVal)
			errs <- err
		}(float64(40 + i))
	}
	wg.Wait()
	close(errs)

	var ok, already int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, marks.ErrAlreadySubmitted):
			already++
		default:
			t.Errorf("SubmitOnce() unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, already)

	pending, err := repo.ListPending(ctx, "T001")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4}, testutil.RowIDs(pending))
}
