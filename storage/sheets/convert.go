// Package sheets maps the teachers and marks tables of a tabular.Store onto the core domain types.
// Cell values are normalized here; nothing past this package compares loosely typed values.
package sheets

import (
	"math"
	"strconv"
	"strings"

	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/storage/tabular"
)

// columns
const (
	colTeacherID        = "TeacherID"
	colTeacherName      = "TeacherName"
	colPIN              = "PIN"
	colAssignedSubjects = "AssignedSubjects"

	colRowID         = "RowID"
	colClass         = "Class"
	colSubject       = "Subject"
	colPaperType     = "PaperType"
	colRollNo        = "RollNo"
	colStudentName   = "StudentName"
	colTotalMarks    = "TotalMarks"
	colObtainedMarks = "ObtainedMarks"
	colResult        = "Result"
	colSubmitted     = "Submitted"
	colSubmittedAt   = "SubmittedAt"
)

var (
	TeachersHeader = []string{colTeacherID, colTeacherName, colPIN, colAssignedSubjects}
	MarksHeader    = []string{
		colRowID, colClass, colSubject, colPaperType, colRollNo, colStudentName,
		colTotalMarks, colTeacherID, colObtainedMarks, colResult, colSubmitted, colSubmittedAt,
	}
)

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func cellFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

// cellInt accepts integral numbers in any cell representation: 1, 1.0, "1", " 1 ".
func cellInt(v interface{}) (int, bool) {
	f, ok := cellFloat(v)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// cellBool is true for a boolean TRUE cell or a text cell reading "true" in any case.
func cellBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}

func teacherFromRow(row tabular.Row) teacher.Teacher {
	return teacher.Teacher{
		TeacherID:        cellString(row[colTeacherID]),
		TeacherName:      cellString(row[colTeacherName]),
		PIN:              cellString(row[colPIN]),
		AssignedSubjects: cellString(row[colAssignedSubjects]),
	}
}

func teacherToRow(row tabular.Row, t teacher.Teacher) tabular.Row {
	if row == nil {
		row = make(tabular.Row, len(TeachersHeader))
	}
	row[colTeacherID] = t.TeacherID
	row[colTeacherName] = t.TeacherName
	row[colPIN] = t.PIN
	row[colAssignedSubjects] = t.AssignedSubjects
	return row
}

// recordFromRow returns false when the row has no usable RowID.
func recordFromRow(row tabular.Row, defaultTotal float64) (marks.Record, bool) {
	rowID, ok := cellInt(row[colRowID])
	if !ok {
		return marks.Record{}, false
	}
	rec := marks.Record{
		RowID:       rowID,
		Class:       cellString(row[colClass]),
		Subject:     cellString(row[colSubject]),
		PaperType:   cellString(row[colPaperType]),
		RollNo:      cellString(row[colRollNo]),
		StudentName: cellString(row[colStudentName]),
		TeacherID:   cellString(row[colTeacherID]),
		Result:      cellString(row[colResult]),
		Submitted:   cellBool(row[colSubmitted]),
		SubmittedAt: cellString(row[colSubmittedAt]),
	}
	if total, ok := cellFloat(row[colTotalMarks]); ok && total > 0 {
		rec.TotalMarks = total
	} else {
		rec.TotalMarks = defaultTotal
	}
	if obtained, ok := cellFloat(row[colObtainedMarks]); ok {
		rec.ObtainedMarks = &obtained
	}
	return rec, true
}

// applyGrade copies the graded fields of rec into row, leaving every other cell untouched.
func applyGrade(row tabular.Row, rec marks.Record) {
	if rec.ObtainedMarks != nil {
		row[colObtainedMarks] = *rec.ObtainedMarks
	}
	row[colResult] = rec.Result
	row[colSubmitted] = rec.Submitted
	row[colSubmittedAt] = rec.SubmittedAt
}

// RecordToRow renders a full record, used when seeding the marks table.
func RecordToRow(rec marks.Record) tabular.Row {
	row := tabular.Row{
		colRowID:       rec.RowID,
		colClass:       rec.Class,
		colSubject:     rec.Subject,
		colPaperType:   rec.PaperType,
		colRollNo:      rec.RollNo,
		colStudentName: rec.StudentName,
		colTotalMarks:  rec.TotalMarks,
		colTeacherID:   rec.TeacherID,
		colResult:      rec.Result,
		colSubmitted:   rec.Submitted,
		colSubmittedAt: rec.SubmittedAt,
	}
	if rec.ObtainedMarks != nil {
		row[colObtainedMarks] = *rec.ObtainedMarks
	}
	return row
}

// TeacherToRow renders a teacher, used when seeding the teachers table.
func TeacherToRow(t teacher.Teacher) tabular.Row {
	return teacherToRow(nil, t)
}
