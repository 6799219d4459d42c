package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/markbook/apps/api/echo"
	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/services/metrics"
	"github.com/trezcool/markbook/storage/sheets"
	"github.com/trezcool/markbook/storage/tabular"
	"github.com/trezcool/markbook/tests"
)

type env struct {
	app       Server
	metrics   *metricsvc.Metrics
	marksFile *tabular.File
}

type setupOption func(*ServerDeps)

func setup(t *testing.T, seed bool, opts ...setupOption) env {
	t.Helper()
	conf := &core.Config{
		AppName:  "Markbook",
		Build:    "test",
		Env:      "TEST",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true, AllowOrigins: []string{"*"}},
	}

	// set up stores & repos
	dir := t.TempDir()
	teachersFile := tabular.NewFile(filepath.Join(dir, "teachers.xlsx"), tabular.WithRetry(3, time.Millisecond))
	marksFile := tabular.NewFile(filepath.Join(dir, "marks.xlsx"), tabular.WithRetry(3, time.Millisecond))
	if seed {
		testutil.SeedTeachers(t, teachersFile, testutil.Teachers()...)
		testutil.SeedRecords(t, marksFile, testutil.Records()...)
	}

	// set up services
	metrics := metricsvc.New(conf.Build)
	teacherSvc := teacher.NewService(sheets.NewTeacherRepository(teachersFile, testutil.TeachersSheet), core.NopLogger{})
	marksSvc := marks.NewService(
		sheets.NewMarksRepository(marksFile, testutil.MarksSheet, marks.DefaultGrading()),
		core.NopLogger{},
		metrics,
	)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// set up server
	deps := ServerDeps{
		Conf:       conf,
		Logger:     core.NopLogger{},
		TeacherSvc: teacherSvc,
		MarksSvc:   marksSvc,
		Validate:   validate,
		Translator: translator,
		Metrics:    metrics,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	app := NewServer(deps)
	t.Cleanup(func() { _ = app.Close() })
	return env{app: app, metrics: metrics, marksFile: marksFile}
}

type httpErr struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func newErr(msg string, flds ...map[string]string) httpErr {
	e := httpErr{Message: msg}
	if len(flds) > 0 {
		e.Errors = flds[0]
	}
	return e
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func do(app Server, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if !assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String()) {
		t.FailNow()
	}
}
