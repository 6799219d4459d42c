package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/storage/tabular"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out           io.Writer
	teachersStore tabular.Store
	marksStore    tabular.Store
	teachersSheet string
	marksSheet    string
	teacherRepo   teacher.Repository
	teacherSvc    teacher.Service
	marksSvc      marks.Service
}

func (cli *commandLine) run(args []string) error {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Markbook administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.SetArgs(args[1:])

	root.AddCommand(
		cli.seedCmd(),
		cli.addTeacherCmd(),
		cli.resetPINCmd(),
		cli.reportCmd(),
	)
	return root.ExecuteContext(context.Background())
}

// promptPIN reads a PIN from the terminal without echoing it.
func (cli *commandLine) promptPIN(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter PIN:")
	pin, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pin) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	return string(pin), nil
}
