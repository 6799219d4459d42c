package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	echoapi "github.com/trezcool/markbook/apps/api/echo"
	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	logsvc "github.com/trezcool/markbook/services/logger"
	metricsvc "github.com/trezcool/markbook/services/metrics"
	"github.com/trezcool/markbook/storage/sheets"
	"github.com/trezcool/markbook/storage/tabular"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		return err
	}
	logger := logsvc.NewRollbarLogger(zl.Named("API"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Sync()

	storeLogger := logsvc.NewRollbarLogger(zl.Named("STORE"), conf)
	storeLogger.Enable(!conf.Debug && conf.RollbarToken != "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up stores
	storeOpts := []tabular.Option{
		tabular.WithRetry(conf.Store.WriteAttempts, conf.Store.RetryDelay),
		tabular.WithLogger(storeLogger),
	}
	teachersFile := tabular.NewFile(conf.Store.TeachersPath(), storeOpts...)
	marksFile := tabular.NewFile(conf.Store.MarksPath(), storeOpts...)
	if err = os.MkdirAll(conf.Store.DataDir, 0o755); err != nil {
		return errors.Wrap(err, "creating data directory")
	}

	teacherRepo := sheets.NewTeacherRepository(teachersFile, conf.Store.TeachersSheet)
	if conf.Store.Watch {
		watcher, err := tabular.NewWatcher(storeLogger)
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err = teacherRepo.EnableCache(watcher); err != nil {
			return err
		}
		watcher.Start(ctx)
	}
	marksRepo := sheets.NewMarksRepository(marksFile, conf.Store.MarksSheet, marks.Grading{
		PassThreshold: conf.Marks.PassThreshold,
		DefaultTotal:  conf.Marks.DefaultTotalMarks,
	})

	// set up services
	metrics := metricsvc.New(conf.Build)
	teacherSvc := teacher.NewService(teacherRepo, logger)
	marksSvc := marks.NewService(marksRepo, logger, metrics)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	if !teachersFile.Exists() || !marksFile.Exists() {
		logger.Warn("data files missing; run `admin seed` to create them", map[string]interface{}{
			"teachers": teachersFile.Location(),
			"marks":    marksFile.Location(),
		})
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus collectors.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dataDir").Set(conf.Store.DataDir)

	debugMux := http.NewServeMux()
	debugMux.Handle("/debug/vars", expvar.Handler())
	debugMux.Handle("/metrics", metrics.Handler())
	debugSrv := &http.Server{Addr: conf.Server.DebugHost, Handler: debugMux, ReadHeaderTimeout: 5 * time.Second}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			TeacherSvc: teacherSvc,
			MarksSvc:   marksSvc,
			Validate:   validate,
			Translator: translator,
			Metrics:    metrics,
			Ready: func(ctx context.Context) error {
				if !marksFile.Exists() {
					return errors.Errorf("marks file missing: %s", marksFile.Location())
				}
				_, err := teacherRepo.QueryTeachers(ctx)
				return err
			},
		},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := debugSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
		return nil
	})
	g.Go(func() error {
		server.Start()
		return nil
	})

	// =========================================================================
	// Shutdown

	g.Go(func() error {
		defer cancel()

		select {
		case err := <-server.Errors():
			_ = debugSrv.Close()
			return errors.Wrap(err, "server error")
		case <-gctx.Done():
			_ = debugSrv.Close()
			return server.Close()
		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		}

		// give outstanding requests a deadline for completion
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		_ = debugSrv.Shutdown(sctx)

		// asking listener to shutdown and shed load
		if err := server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		logger.Error(err.Error(), err)
		return err
	}
	return nil
}
