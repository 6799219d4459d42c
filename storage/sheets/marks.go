package sheets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/storage/tabular"
)

var errMarksFileMissing = errors.New("marks file missing")

type existenceChecker interface {
	Exists() bool
}

type marksRepository struct {
	store   tabular.Store
	sheet   string
	grading marks.Grading
	nowFunc func() time.Time

	// mutex serializes SubmitOnce's read-check-write cycle
	mutex sync.Mutex
}

var _ marks.Repository = (*marksRepository)(nil)

func NewMarksRepository(store tabular.Store, sheet string, grading marks.Grading) marks.Repository {
	return &marksRepository{
		store:   store,
		sheet:   sheet,
		grading: grading,
		nowFunc: time.Now,
	}
}

func (repo *marksRepository) QueryRecords(ctx context.Context) ([]marks.Record, error) {
	table, err := repo.store.ReadTable(ctx, repo.sheet)
	if err != nil {
		return nil, err
	}
	records := make([]marks.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		if rec, ok := recordFromRow(row, repo.grading.DefaultTotal); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (repo *marksRepository) ListPending(ctx context.Context, teacherID string) ([]marks.Record, error) {
	records, err := repo.QueryRecords(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]marks.Record, 0, len(records))
	for _, rec := range records {
		if rec.IsPendingFor(teacherID) {
			pending = append(pending, rec)
		}
	}
	return pending, nil
}

func (repo *marksRepository) SubmitOnce(ctx context.Context, rowID int, obtained float64) (marks.Record, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	if ec, ok := repo.store.(existenceChecker); ok && !ec.Exists() {
		return marks.Record{}, core.NewStoreError("submit", repo.store.Location(), errMarksFileMissing)
	}

	table, err := repo.store.ReadTable(ctx, repo.sheet)
	if err != nil {
		return marks.Record{}, err
	}

	idx := -1
	var rec marks.Record
	for i, row := range table.Rows {
		if r, ok := recordFromRow(row, repo.grading.DefaultTotal); ok && r.RowID == rowID {
			idx, rec = i, r
			break
		}
	}
	if idx == -1 {
		return marks.Record{}, marks.ErrNotFound
	}
	if rec.Submitted {
		return marks.Record{}, marks.ErrAlreadySubmitted
	}

	rec = repo.grading.Grade(rec, obtained, repo.nowFunc())
	applyGrade(table.Rows[idx], rec)

	if table.Header == nil {
		table.Header = MarksHeader
	}
	if err = repo.store.WriteTable(ctx, table, repo.sheet); err != nil {
		return marks.Record{}, err
	}
	return rec, nil
}
