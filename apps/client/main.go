// Command client is the terminal client of the markbook submission service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/session"
	logsvc "github.com/trezcool/markbook/services/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	conf := core.NewConfig()

	policy, err := session.ParseRefreshPolicy(conf.Client.RefreshPolicy)
	if err != nil {
		return err
	}

	sessionFile := conf.Client.SessionFile
	if sessionFile == "" {
		if sessionFile, err = defaultSessionFile(); err != nil {
			return err
		}
	}

	// the TUI owns the terminal: log to a file only when asked to
	logger := core.Logger(core.NopLogger{})
	if conf.Client.LogFile != "" {
		zl, err := logsvc.NewFileZap(conf, conf.Client.LogFile)
		if err != nil {
			return err
		}
		rl := logsvc.NewRollbarLogger(zl.Named("CLIENT"), conf)
		defer rl.Sync()
		logger = rl
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	machine := session.NewMachine(
		newHTTPBackend(conf.Client.BaseURL, conf.Client.RequestTimeout),
		newFileStorage(sessionFile),
		policy,
		logger,
	)

	prog := tea.NewProgram(newModel(ctx, machine), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err = prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "running client")
	}
	return nil
}
