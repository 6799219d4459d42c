package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/session"
	"github.com/trezcool/markbook/core/teacher"
)

var errConnection = errors.New("Connection Error")

// apiError is a failed response of the submission service.
type apiError struct {
	Status  int
	Message string
}

func (err *apiError) Error() string {
	if err.Message == "" {
		return http.StatusText(err.Status)
	}
	return err.Message
}

// httpBackend talks to the submission service over HTTP.
type httpBackend struct {
	baseURL string
	client  *http.Client
}

var _ session.Backend = (*httpBackend)(nil)

func newHTTPBackend(baseURL string, timeout time.Duration) *httpBackend {
	return &httpBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *httpBackend) Login(ctx context.Context, teacherID, pin string) (teacher.Identity, error) {
	var resp struct {
		Success bool             `json:"success"`
		Teacher teacher.Identity `json:"teacher"`
	}
	body := map[string]string{"teacherId": teacherID, "pin": pin}
	if err := b.do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return teacher.Identity{}, err
	}
	return resp.Teacher, nil
}

func (b *httpBackend) ListPending(ctx context.Context, teacherID string) ([]marks.Record, error) {
	var records []marks.Record
	if err := b.do(ctx, http.MethodGet, "/students?teacherId="+url.QueryEscape(teacherID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (b *httpBackend) Submit(ctx context.Context, rowID int, obtained float64) (marks.Record, error) {
	var resp struct {
		Success bool         `json:"success"`
		Record  marks.Record `json:"record"`
	}
	body := map[string]interface{}{"rowId": rowID, "obtainedMarks": obtained}
	if err := b.do(ctx, http.MethodPost, "/submit", body, &resp); err != nil {
		return marks.Record{}, err
	}
	return resp.Record, nil
}

func (b *httpBackend) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return errors.Wrap(err, "encoding request")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, &body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return errors.Wrap(errConnection, err.Error())
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &apiError{Status: resp.StatusCode, Message: failure.Message}
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}
