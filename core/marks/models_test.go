package marks

import (
	"testing"
	"time"
)

func TestGrading_Result(t *testing.T) {
	g := DefaultGrading()
	tests := []struct {
		name     string
		obtained float64
		total    float64
		want     string
	}{
		{name: "boundary", obtained: 35, total: 100, want: ResultPass},
		{name: "just below", obtained: 34.9, total: 100, want: ResultFail},
		{name: "zero", obtained: 0, total: 100, want: ResultFail},
		{name: "full", obtained: 100, total: 100, want: ResultPass},
		{name: "other total", obtained: 7, total: 20, want: ResultPass},
		{name: "other total below", obtained: 6.9, total: 20, want: ResultFail},
		{name: "default total", obtained: 35, total: 0, want: ResultPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Result(tt.obtained, tt.total); got != tt.want {
				t.Errorf("Result(%v, %v) = %v, want %v", tt.obtained, tt.total, got, tt.want)
			}
		})
	}
}

func TestGrading_Grade(t *testing.T) {
	g := Grading{PassThreshold: 0.5, DefaultTotal: 50}
	at := time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.FixedZone("EAT", 3*60*60))

	got := g.Grade(Record{RowID: 1, TeacherID: "T001"}, 25, at)
	if got.ObtainedMarks == nil || *got.ObtainedMarks != 25 {
		t.Errorf("Grade() ObtainedMarks = %v, want 25", got.ObtainedMarks)
	}
	if got.Result != ResultPass {
		t.Errorf("Grade() Result = %v, want %v", got.Result, ResultPass)
	}
	if !got.Submitted {
		t.Error("Grade() Submitted = false")
	}
	if want := "2024-03-01T07:30:00.123Z"; got.SubmittedAt != want {
		t.Errorf("Grade() SubmittedAt = %v, want %v", got.SubmittedAt, want)
	}
}

func TestRecord_ClassKey(t *testing.T) {
	if got := (Record{}).ClassKey(); got != UnknownClass {
		t.Errorf("ClassKey() = %v, want %v", got, UnknownClass)
	}
	if got := (Record{Class: "10A"}).ClassKey(); got != "10A" {
		t.Errorf("ClassKey() = %v, want 10A", got)
	}
}
