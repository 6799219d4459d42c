package logsvc

import (
	"context"
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/teacher"
)

// RollbarLogger reports to Rollbar and prints structured lines through zap.
type RollbarLogger struct {
	zl *zap.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{zl: zl.WithOptions(zap.AddCallerSkip(1))}
}

// NewZap builds the console logger: human readable at debug level in debug mode, JSON otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	return newZap(conf)
}

// NewFileZap is NewZap writing to path instead of stderr.
func NewFileZap(conf *core.Config, path string) (*zap.Logger, error) {
	return newZap(conf, path)
}

func newZap(conf *core.Config, outputs ...string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if conf.Debug {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if len(outputs) > 0 {
		zc.OutputPaths = outputs
		zc.ErrorOutputPaths = outputs
	}
	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return zl.With(zap.String("app", conf.AppName), zap.String("env", conf.Env)), nil
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Sync flushes both zap buffers and pending Rollbar items.
func (l RollbarLogger) Sync() {
	rollbar.Wait()
	_ = l.zl.Sync()
}

// expected fmt: msg | error, map[string]interface{}, teacher.Identity
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []zap.Field) {
	var idSet bool
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	fields := make([]zap.Field, 0, len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case teacher.Identity:
			if !idSet { // only report one Identity
				// per item: the global rollbar person is shared by concurrent requests
				person := &rollbar.Person{Id: a.TeacherID, Username: a.TeacherName}
				rbArgs = append(rbArgs, rollbar.NewPersonContext(context.Background(), person))
				fields = append(fields, zap.String("teacherId", a.TeacherID))
				idSet = true
			}
			continue
		case error:
			fields = append(fields, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				fields = append(fields, zap.Any(k, v))
			}
		default:
			fields = append(fields, zap.Any(fmt.Sprintf("arg%d", i), a))
		}
		rbArgs = append(rbArgs, arg)
	}
	return rbArgs, fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.zl.Debug(msg, fields...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.zl.Info(msg, fields...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.zl.Warn(msg, fields...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.zl.Error(msg, fields...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	rollbar.Wait()
	l.zl.Fatal(msg, fields...)
}
