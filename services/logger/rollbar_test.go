package logsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/teacher"
)

func TestRollbarLogger(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	l := NewRollbarLogger(zap.New(obs), &core.Config{Env: "TEST", Build: "test"})
	l.Enable(false)

	l.Debug("debugging")
	l.Warn(
		"file busy, retrying... (2 left)",
		errors.New("resource busy"),
		map[string]interface{}{"path": "/data/marks.xlsx"},
		teacher.Identity{TeacherID: "T001", TeacherName: "John Doe"},
		teacher.Identity{TeacherID: "T002", TeacherName: "Jane Smith"},
	)
	l.Error("odd arg", 42)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Empty(t, entries[0].Context)

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, map[string]interface{}{
		"error":     "resource busy",
		"path":      "/data/marks.xlsx",
		"teacherId": "T001",
	}, entries[1].ContextMap())

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, map[string]interface{}{"arg0": int64(42)}, entries[2].ContextMap())
}

func TestRollbarLogger_prepare_personPerItem(t *testing.T) {
	obs, _ := observer.New(zapcore.DebugLevel)
	l := NewRollbarLogger(zap.New(obs), &core.Config{Env: "TEST", Build: "test"})

	john := teacher.Identity{TeacherID: "T001", TeacherName: "John Doe"}
	rbArgs, _ := l.prepare("submitting", []interface{}{john, teacher.Identity{TeacherID: "T002"}})
	require.Len(t, rbArgs, 2)
	assert.Equal(t, "submitting", rbArgs[0])
	_, isCtx := rbArgs[1].(context.Context)
	assert.True(t, isCtx, "identity is carried by a per-item context")

	rbArgs, _ = l.prepare("anonymous", nil)
	assert.Equal(t, []interface{}{"anonymous"}, rbArgs)
}
