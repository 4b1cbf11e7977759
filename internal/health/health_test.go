package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProbes(t *testing.T) {
	s := New(0, nil)
	h := s.Handler()

	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(t, h, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s before ready = %d", path, rec.Code)
		}
	}

	s.SetReady(true)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := get(t, h, path)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("%s after ready = %d %s", path, rec.Code, rec.Body)
		}
	}
}

func TestStatus(t *testing.T) {
	if rec := get(t, New(0, nil).Handler(), "/status"); rec.Code != http.StatusNotFound {
		t.Errorf("status without func = %d", rec.Code)
	}

	s := New(0, func() any { return map[string]any{"state": "engaged", "interaction_count": 2} })
	rec := get(t, s.Handler(), "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["state"] != "engaged" || body["interaction_count"] != float64(2) {
		t.Errorf("body = %v", body)
	}
}

func TestMetrics(t *testing.T) {
	rec := get(t, New(0, nil).Handler(), "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics = %d", rec.Code)
	}
}
