package teacher

import (
	"context"
	"errors"

	"github.com/trezcool/markbook/core"
)

var (
	// errors
	ErrNotFound = errors.New("invalid credentials")
)

type (
	Repository interface {
		// QueryTeachers returns every teacher in table order.
		QueryTeachers(ctx context.Context) ([]Teacher, error)
		// SaveTeacher creates the teacher or replaces the one with the same TeacherID.
		SaveTeacher(ctx context.Context, t Teacher) error
	}

	Service interface {
		Authenticate(ctx context.Context, identifier, pin string) (Identity, error)
		Save(ctx context.Context, t Teacher) error
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// Authenticate looks up the teacher whose TeacherID equals identifier and whose PIN equals pin.
// The comparison is plain string equality.
func (svc *service) Authenticate(ctx context.Context, identifier, pin string) (Identity, error) {
	teachers, err := svc.repo.QueryTeachers(ctx)
	if err != nil {
		return Identity{}, err
	}
	for _, t := range teachers {
		if t.TeacherID == identifier && t.PIN == pin {
			return t.Identity(), nil
		}
	}
	svc.logger.Debug("authentication failed", map[string]interface{}{"teacherId": identifier})
	return Identity{}, ErrNotFound
}

func (svc *service) Save(ctx context.Context, t Teacher) error {
	t.TeacherID = core.CleanString(t.TeacherID)
	t.TeacherName = core.CleanString(t.TeacherName)
	t.AssignedSubjects = core.CleanString(t.AssignedSubjects)

	var flds []core.FieldError
	if t.TeacherID == "" {
		flds = append(flds, core.FieldError{Field: "TeacherID", Error: "TeacherID is required"})
	}
	if t.PIN == "" {
		flds = append(flds, core.FieldError{Field: "PIN", Error: "PIN is required"})
	}
	if flds != nil {
		return core.NewValidationError(errors.New("invalid teacher"), flds...)
	}
	return svc.repo.SaveTeacher(ctx, t)
}
