package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TechXTT/tidbreader/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	rec   record.Record
	ok    bool
	err   error
	panic any
	calls []int64
}

func (s *stubService) GetUserByID(_ context.Context, id int64) (record.Record, bool, error) {
	s.calls = append(s.calls, id)
	if s.panic != nil {
		panic(s.panic)
	}
	return s.rec, s.ok, s.err
}

type nopPool struct{}

func (nopPool) Initialize(context.Context) error { return nil }
func (nopPool) Shutdown() error                  { return nil }

func do(t *testing.T, svc UserService, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewServer(Options{}, svc, nopPool{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestRoot(t *testing.T) {
	rec := do(t, &stubService{}, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"TiDB Reader Service is running"}`, rec.Body.String())
}

func TestGetUser_Found(t *testing.T) {
	svc := &stubService{
		rec: record.Zip([]string{"id", "name", "email"}, []any{int64(42), "Ana", "ana@x.com"}),
		ok:  true,
	}
	rec := do(t, svc, http.MethodGet, "/users/42")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"id":42,"name":"Ana","email":"ana@x.com"}`, rec.Body.String())
	assert.Equal(t, []int64{42}, svc.calls)
}

func TestGetUser_NotFound(t *testing.T) {
	rec := do(t, &stubService{}, http.MethodGet, "/users/999999")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User with ID 999999 not found", decodeDetail(t, rec))
}

func TestGetUser_ZeroAndNegativeIDsReachService(t *testing.T) {
	for _, tc := range []struct {
		path string
		id   int64
	}{
		{"/users/0", 0},
		{"/users/-5", -5},
	} {
		t.Run(tc.path, func(t *testing.T) {
			svc := &stubService{}
			rec := do(t, svc, http.MethodGet, tc.path)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, []int64{tc.id}, svc.calls)
		})
	}
}

func TestGetUser_ServiceErrorIsGeneric(t *testing.T) {
	svc := &stubService{err: errors.New("dial tcp 10.0.0.5:4000: connection refused")}
	rec := do(t, svc, http.MethodGet, "/users/1")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeDetail(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestGetUser_InvalidID(t *testing.T) {
	for _, path := range []string{"/users/abc", "/users/1.5", "/users/99999999999999999999"} {
		t.Run(path, func(t *testing.T) {
			svc := &stubService{}
			rec := do(t, svc, http.MethodGet, path)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "Invalid user ID", decodeDetail(t, rec))
			assert.Empty(t, svc.calls)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, &stubService{}, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeDetail(t, rec))
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, &stubService{}, http.MethodPost, "/users/1")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", decodeDetail(t, rec))
}

func TestPanicBecomesGeneric500(t *testing.T) {
	svc := &stubService{panic: "secret internal state"}
	rec := do(t, svc, http.MethodGet, "/users/7")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeDetail(t, rec))
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestRequestIDHeader(t *testing.T) {
	h := NewServer(Options{}, &stubService{}, nopPool{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecover_LeavesStartedResponseAlone(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":`))
		panic("encoder blew up")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"id":`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Internal server error")
}

func TestRecover_AccessLogSeesRecoveredStatus(t *testing.T) {
	var status int
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	spy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lrw := newLoggingResponseWriter(w)
		h.ServeHTTP(lrw, r)
		status = lrw.statusCode
	})

	rec := httptest.NewRecorder()
	spy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, status)
}
