package metricsvc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/markbook/core/marks"
)

func TestMetrics(t *testing.T) {
	m := New("test")

	m.ObserveSubmission(marks.OutcomeSubmitted)
	m.ObserveSubmission(marks.OutcomeSubmitted)
	m.ObserveSubmission(marks.OutcomeAlreadySubmitted)
	m.ObserveRequest(http.MethodPost, "/api/submit", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues(marks.OutcomeSubmitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(marks.OutcomeAlreadySubmitted)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.submissions.WithLabelValues(marks.OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/api/submit", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `markbook_submissions_total{outcome="submitted"} 2`), body)
	assert.True(t, strings.Contains(body, `markbook_build_info{build="test"} 1`), body)
}
