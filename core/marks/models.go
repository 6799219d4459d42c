package marks

import "time"

// Results
const (
	ResultPass = "Pass"
	ResultFail = "Fail"
)

const (
	DefaultPassThreshold = 0.35
	DefaultTotalMarks    = 100.0

	// SubmittedAtLayout matches an ISO-8601 UTC timestamp with milliseconds.
	SubmittedAtLayout = "2006-01-02T15:04:05.000Z07:00"

	UnknownClass = "Unknown"
)

// Record is a gradable unit of the marks table. JSON keys are the table's column names.
type Record struct {
	RowID         int      `json:"RowID"`
	Class         string   `json:"Class"`
	Subject       string   `json:"Subject"`
	PaperType     string   `json:"PaperType"`
	RollNo        string   `json:"RollNo"`
	StudentName   string   `json:"StudentName"`
	TotalMarks    float64  `json:"TotalMarks"`
	TeacherID     string   `json:"TeacherID"`
	ObtainedMarks *float64 `json:"ObtainedMarks"`
	Result        string   `json:"Result"`
	Submitted     bool     `json:"Submitted"`
	SubmittedAt   string   `json:"SubmittedAt"`
}

// IsPendingFor reports whether the record is ungraded and assigned to teacherID.
func (r Record) IsPendingFor(teacherID string) bool {
	return r.TeacherID == teacherID && !r.Submitted
}

// ClassKey is the dashboard grouping key of the record.
func (r Record) ClassKey() string {
	if r.Class == "" {
		return UnknownClass
	}
	return r.Class
}

// MaxMarks is TotalMarks, or def when TotalMarks is not a positive number.
func (r Record) MaxMarks(def float64) float64 {
	if r.TotalMarks > 0 {
		return r.TotalMarks
	}
	return def
}

// Grading fixes how a Result is derived from obtained marks.
type Grading struct {
	PassThreshold float64
	DefaultTotal  float64
}

func DefaultGrading() Grading {
	return Grading{PassThreshold: DefaultPassThreshold, DefaultTotal: DefaultTotalMarks}
}

// Result is Pass iff obtained/total >= PassThreshold (inclusive).
func (g Grading) Result(obtained, total float64) string {
	if total <= 0 {
		total = g.DefaultTotal
	}
	if obtained/total >= g.PassThreshold {
		return ResultPass
	}
	return ResultFail
}

// Grade marks r as submitted with obtained marks at the given time.
func (g Grading) Grade(r Record, obtained float64, at time.Time) Record {
	r.ObtainedMarks = &obtained
	r.Result = g.Result(obtained, r.MaxMarks(g.DefaultTotal))
	r.Submitted = true
	r.SubmittedAt = at.UTC().Format(SubmittedAtLayout)
	return r
}

// ClassCount is the number of pending records of one class.
type ClassCount struct {
	Class   string `json:"class"`
	Pending int    `json:"pending"`
}
