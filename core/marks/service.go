package marks

import (
	"context"
	"errors"
	"sort"

	"github.com/trezcool/markbook/core"
)

var (
	// errors
	ErrNotFound         = errors.New("student record not found")
	ErrAlreadySubmitted = errors.New("marks already submitted for this student")
)

// Submission outcomes reported to Metrics.
const (
	OutcomeSubmitted        = "submitted"
	OutcomeAlreadySubmitted = "already_submitted"
	OutcomeNotFound         = "not_found"
	OutcomeError            = "error"
)

type (
	Repository interface {
		// QueryRecords returns every record of the marks table in file order.
		QueryRecords(ctx context.Context) ([]Record, error)
		// ListPending returns the records assigned to teacherID that are not submitted yet, in file order.
		ListPending(ctx context.Context, teacherID string) ([]Record, error)
		// SubmitOnce grades the record with rowID; it returns ErrNotFound or ErrAlreadySubmitted
		// without touching the store when the record cannot be graded.
		SubmitOnce(ctx context.Context, rowID int, obtained float64) (Record, error)
	}

	// Metrics observes submission outcomes.
	Metrics interface {
		ObserveSubmission(outcome string)
	}

	Service interface {
		ListPending(ctx context.Context, teacherID string) ([]Record, error)
		Submit(ctx context.Context, rowID int, obtained float64) (Record, error)
		ClassSummary(ctx context.Context, teacherID string) ([]ClassCount, error)
	}

	service struct {
		repo    Repository
		logger  core.Logger
		metrics Metrics
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger, metrics Metrics) Service {
	return &service{repo: repo, logger: logger, metrics: metrics}
}

func (svc *service) ListPending(ctx context.Context, teacherID string) ([]Record, error) {
	records, err := svc.repo.ListPending(ctx, core.CleanString(teacherID))
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (svc *service) Submit(ctx context.Context, rowID int, obtained float64) (Record, error) {
	rec, err := svc.repo.SubmitOnce(ctx, rowID, obtained)
	switch {
	case err == nil:
		svc.observe(OutcomeSubmitted)
		svc.logger.Info("marks submitted", map[string]interface{}{
			"rowId": rec.RowID, "teacherId": rec.TeacherID, "result": rec.Result,
		})
	case errors.Is(err, ErrAlreadySubmitted):
		svc.observe(OutcomeAlreadySubmitted)
	case errors.Is(err, ErrNotFound):
		svc.observe(OutcomeNotFound)
	default:
		svc.observe(OutcomeError)
	}
	return rec, err
}

// ClassSummary counts the pending records of teacherID per class, sorted by class.
func (svc *service) ClassSummary(ctx context.Context, teacherID string) ([]ClassCount, error) {
	records, err := svc.ListPending(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return CountByClass(records), nil
}

func (svc *service) observe(outcome string) {
	if svc.metrics != nil {
		svc.metrics.ObserveSubmission(outcome)
	}
}

// CountByClass groups records by ClassKey, sorted by class.
func CountByClass(records []Record) []ClassCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.ClassKey()]++
	}
	out := make([]ClassCount, 0, len(counts))
	for cls, n := range counts {
		out = append(out, ClassCount{Class: cls, Pending: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}
