package teacher

// Teacher is a row of the teachers table. It is created by the admin tool and read-only at runtime.
type Teacher struct {
	TeacherID        string
	TeacherName      string
	PIN              string
	AssignedSubjects string
}

// Identity is the part of a Teacher that may leave the credential directory.
type Identity struct {
	TeacherID   string `json:"TeacherID"`
	TeacherName string `json:"TeacherName"`
}

func (t Teacher) Identity() Identity {
	return Identity{TeacherID: t.TeacherID, TeacherName: t.TeacherName}
}
