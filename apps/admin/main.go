package main

import (
	"fmt"
	"os"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	logsvc "github.com/trezcool/markbook/services/logger"
	"github.com/trezcool/markbook/storage/sheets"
	"github.com/trezcool/markbook/storage/tabular"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("ADMIN"), conf)
	logger.Enable(false)
	defer logger.Sync()

	// set up stores & repos
	storeOpts := []tabular.Option{
		tabular.WithRetry(conf.Store.WriteAttempts, conf.Store.RetryDelay),
		tabular.WithLogger(logger),
	}
	teachersStore := tabular.NewFile(conf.Store.TeachersPath(), storeOpts...)
	marksStore := tabular.NewFile(conf.Store.MarksPath(), storeOpts...)
	teacherRepo := sheets.NewTeacherRepository(teachersStore, conf.Store.TeachersSheet)
	marksRepo := sheets.NewMarksRepository(marksStore, conf.Store.MarksSheet, marks.Grading{
		PassThreshold: conf.Marks.PassThreshold,
		DefaultTotal:  conf.Marks.DefaultTotalMarks,
	})

	// start CLI
	cli := commandLine{
		out:           os.Stdout,
		teachersStore: teachersStore,
		marksStore:    marksStore,
		teachersSheet: conf.Store.TeachersSheet,
		marksSheet:    conf.Store.MarksSheet,
		teacherRepo:   teacherRepo,
		teacherSvc:    teacher.NewService(teacherRepo, logger),
		marksSvc:      marks.NewService(marksRepo, logger, nil),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		logger.Sync()
		os.Exit(1)
	}
}
