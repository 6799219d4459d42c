package sheets

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/storage/tabular"
)

// TeacherRepository reads teachers from the store. Once EnableCache is called, the table is kept
// in memory until the watcher reports a change of the underlying file.
type TeacherRepository struct {
	store tabular.Store
	sheet string

	mutex   sync.RWMutex
	caching bool
	cache   []teacher.Teacher
	gen     uint64 // bumped by Invalidate
	loads   singleflight.Group
}

var _ teacher.Repository = (*TeacherRepository)(nil)

func NewTeacherRepository(store tabular.Store, sheet string) *TeacherRepository {
	return &TeacherRepository{store: store, sheet: sheet}
}

// EnableCache turns caching on and invalidates the cache on every change reported by w.
func (repo *TeacherRepository) EnableCache(w *tabular.Watcher) error {
	if err := w.Watch(repo.store.Location(), repo.Invalidate); err != nil {
		return err
	}
	repo.mutex.Lock()
	repo.caching = true
	repo.mutex.Unlock()
	return nil
}

// Invalidate drops the cached table.
func (repo *TeacherRepository) Invalidate() {
	repo.mutex.Lock()
	repo.cache = nil
	repo.gen++
	repo.mutex.Unlock()
	repo.loads.Forget("teachers")
}

func (repo *TeacherRepository) QueryTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	repo.mutex.RLock()
	caching, cached, gen := repo.caching, repo.cache, repo.gen
	repo.mutex.RUnlock()

	if !caching {
		return repo.load(ctx)
	}
	if cached != nil {
		return append([]teacher.Teacher(nil), cached...), nil
	}

	v, err, _ := repo.loads.Do("teachers", func() (interface{}, error) {
		teachers, err := repo.load(ctx)
		if err != nil {
			return nil, err
		}
		repo.mutex.Lock()
		if repo.gen == gen {
			repo.cache = teachers
		}
		repo.mutex.Unlock()
		return teachers, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]teacher.Teacher(nil), v.([]teacher.Teacher)...), nil
}

func (repo *TeacherRepository) load(ctx context.Context) ([]teacher.Teacher, error) {
	table, err := repo.store.ReadTable(ctx, repo.sheet)
	if err != nil {
		return nil, err
	}
	teachers := make([]teacher.Teacher, 0, len(table.Rows))
	for _, row := range table.Rows {
		if t := teacherFromRow(row); t.TeacherID != "" {
			teachers = append(teachers, t)
		}
	}
	return teachers, nil
}

func (repo *TeacherRepository) SaveTeacher(ctx context.Context, t teacher.Teacher) error {
	table, err := repo.store.ReadTable(ctx, repo.sheet)
	if err != nil {
		return err
	}
	if table.Header == nil {
		table.Header = TeachersHeader
	}

	found := false
	for _, row := range table.Rows {
		if cellString(row[colTeacherID]) == t.TeacherID {
			teacherToRow(row, t)
			found = true
			break
		}
	}
	if !found {
		table.Rows = append(table.Rows, teacherToRow(nil, t))
	}

	if err = repo.store.WriteTable(ctx, table, repo.sheet); err != nil {
		return err
	}
	repo.Invalidate()
	return nil
}
