package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/storage/sheets"
	"github.com/trezcool/markbook/storage/tabular"
)

//go:embed fixtures/demo.yaml
var demoFixture []byte

var errDataExists = errors.New("data files already exist (use --force to overwrite)")

type fixture struct {
	Teachers []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		PIN      string `yaml:"pin"`
		Subjects string `yaml:"subjects"`
	} `yaml:"teachers"`
	Records []struct {
		RowID      int     `yaml:"rowId"`
		Class      string  `yaml:"class"`
		Subject    string  `yaml:"subject"`
		PaperType  string  `yaml:"paperType"`
		RollNo     string  `yaml:"rollNo"`
		Student    string  `yaml:"student"`
		TotalMarks float64 `yaml:"totalMarks"`
		TeacherID  string  `yaml:"teacherId"`
	} `yaml:"records"`
}

func parseFixture(data []byte) (fixture, error) {
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fixture{}, errors.Wrap(err, "parsing fixture")
	}
	seen := make(map[int]bool, len(fx.Records))
	for _, r := range fx.Records {
		if r.RowID <= 0 {
			return fixture{}, errors.Errorf("record %q: rowId must be a positive integer", r.Student)
		}
		if seen[r.RowID] {
			return fixture{}, errors.Errorf("duplicate rowId %d", r.RowID)
		}
		seen[r.RowID] = true
	}
	return fx, nil
}

func (cli *commandLine) seedCmd() *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the teachers and marks workbooks from a YAML fixture (demo data by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := demoFixture
			if file != "" {
				var err error
				if data, err = os.ReadFile(file); err != nil {
					return errors.Wrap(err, "reading fixture")
				}
			}
			fx, err := parseFixture(data)
			if err != nil {
				return err
			}
			return cli.seed(cmd.Context(), fx, force)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture to load instead of the demo data")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing workbooks")
	return cmd
}

type existenceChecker interface {
	Exists() bool
}

func (cli *commandLine) seed(ctx context.Context, fx fixture, force bool) error {
	if !force {
		for _, store := range []tabular.Store{cli.teachersStore, cli.marksStore} {
			if ec, ok := store.(existenceChecker); ok && ec.Exists() {
				return errDataExists
			}
		}
	}

	teachers := tabular.Table{Header: sheets.TeachersHeader}
	for _, t := range fx.Teachers {
		teachers.Rows = append(teachers.Rows, sheets.TeacherToRow(teacher.Teacher{
			TeacherID: t.ID, TeacherName: t.Name, PIN: t.PIN, AssignedSubjects: t.Subjects,
		}))
	}
	records := tabular.Table{Header: sheets.MarksHeader}
	for _, r := range fx.Records {
		records.Rows = append(records.Rows, sheets.RecordToRow(marks.Record{
			RowID: r.RowID, Class: r.Class, Subject: r.Subject, PaperType: r.PaperType, RollNo: r.RollNo,
			StudentName: r.Student, TotalMarks: r.TotalMarks, TeacherID: r.TeacherID,
		}))
	}

	if err := cli.teachersStore.WriteTable(ctx, teachers, cli.teachersSheet); err != nil {
		return err
	}
	if err := cli.marksStore.WriteTable(ctx, records, cli.marksSheet); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%s created (%d teachers).\n", cli.teachersStore.Location(), len(fx.Teachers))
	_, _ = fmt.Fprintf(cli.out, "%s created (%d records).\n", cli.marksStore.Location(), len(fx.Records))
	return nil
}
