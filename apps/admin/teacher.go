package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/teacher"
)

func (cli *commandLine) addTeacherCmd() *cobra.Command {
	var id, name, subjects string
	cmd := &cobra.Command{
		Use:   "addteacher",
		Short: "Create or update a teacher; the PIN is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if core.CleanString(id) == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pin, err := cli.promptPIN(cmd)
			if err != nil {
				return err
			}
			return cli.addTeacher(cmd.Context(), id, name, subjects, pin)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "the teacher's ID")
	cmd.Flags().StringVar(&name, "name", "", "the teacher's name")
	cmd.Flags().StringVar(&subjects, "subjects", "", "comma separated subjects (informational)")
	return cmd
}

func (cli *commandLine) resetPINCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "resetpin",
		Short: "Reset a teacher's PIN; the new PIN is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if core.CleanString(id) == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pin, err := cli.promptPIN(cmd)
			if err != nil {
				return err
			}
			return cli.resetPIN(cmd.Context(), id, pin)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "the teacher's ID")
	return cmd
}

// addTeacher updates or creates a teacher.Teacher
func (cli *commandLine) addTeacher(ctx context.Context, id, name, subjects, pin string) error {
	t := teacher.Teacher{TeacherID: id, TeacherName: name, PIN: pin, AssignedSubjects: subjects}
	if existing, err := cli.findTeacher(ctx, id); err == nil {
		if name == "" {
			t.TeacherName = existing.TeacherName
		}
		if subjects == "" {
			t.AssignedSubjects = existing.AssignedSubjects
		}
	} else if err != teacher.ErrNotFound {
		return err
	}
	if err := cli.teacherSvc.Save(ctx, t); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "teacher %s saved.\n", core.CleanString(id))
	return nil
}

func (cli *commandLine) resetPIN(ctx context.Context, id, pin string) error {
	t, err := cli.findTeacher(ctx, id)
	if err != nil {
		return err
	}
	t.PIN = pin
	if err = cli.teacherSvc.Save(ctx, t); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "PIN of %s reset.\n", t.TeacherID)
	return nil
}

func (cli *commandLine) findTeacher(ctx context.Context, id string) (teacher.Teacher, error) {
	id = core.CleanString(id)
	teachers, err := cli.teacherRepo.QueryTeachers(ctx)
	if err != nil {
		return teacher.Teacher{}, err
	}
	for _, t := range teachers {
		if t.TeacherID == id {
			return t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}
