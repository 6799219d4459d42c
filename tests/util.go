package testutil

import (
	"context"
	"testing"

	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/storage/sheets"
	"github.com/trezcool/markbook/storage/tabular"
)

const (
	TeachersSheet = "Teachers"
	MarksSheet    = "Marks"
)

func Teachers() []teacher.Teacher {
	return []teacher.Teacher{
		{TeacherID: "T001", TeacherName: "John Doe", PIN: "1234", AssignedSubjects: "Math,Physics"},
		{TeacherID: "T002", TeacherName: "Jane Smith", PIN: "5678", AssignedSubjects: "English"},
	}
}

// Records returns T001's four pending records (RowIDs 1-4, RowID 4 in Physics) and T002's one.
func Records() []marks.Record {
	rec := func(id int, class, subject, roll, name, teacherID string) marks.Record {
		return marks.Record{
			RowID: id, Class: class, Subject: subject, PaperType: "MidTerm", RollNo: roll,
			StudentName: name, TotalMarks: 100, TeacherID: teacherID,
		}
	}
	return []marks.Record{
		rec(1, "10A", "Math", "101", "Alice", "T001"),
		rec(2, "10A", "Math", "102", "Bob", "T001"),
		rec(3, "10A", "Math", "103", "Charlie", "T001"),
		rec(4, "10A", "Physics", "101", "Alice", "T001"),
		rec(5, "10B", "English", "201", "Dave", "T002"),
	}
}

func SeedTeachers(t *testing.T, store tabular.Store, teachers ...teacher.Teacher) {
	t.Helper()
	table := tabular.Table{Header: sheets.TeachersHeader}
	for _, tch := range teachers {
		table.Rows = append(table.Rows, sheets.TeacherToRow(tch))
	}
	if err := store.WriteTable(context.Background(), table, TeachersSheet); err != nil {
		t.Fatalf("SeedTeachers() failed: %v", err)
	}
}

func SeedRecords(t *testing.T, store tabular.Store, records ...marks.Record) {
	t.Helper()
	table := tabular.Table{Header: sheets.MarksHeader}
	for _, rec := range records {
		table.Rows = append(table.Rows, sheets.RecordToRow(rec))
	}
	if err := store.WriteTable(context.Background(), table, MarksSheet); err != nil {
		t.Fatalf("SeedRecords() failed: %v", err)
	}
}

func RowIDs(records []marks.Record) []int {
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.RowID)
	}
	return ids
}
