package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}
	svc := session.NewService(session.NewMemoryStore(), 3)
	return NewRouter(calculator.NewSessions(svc), []string{"http://calc.test"})
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterCalculatorAddSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	body := []byte(`{"a":2,"b":3}`)
	req := httptest.NewRequest(http.MethodPost, "/calculator/add", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["result"].(float64); !ok || got != 5 {
		t.Fatalf("expected result 5, got %#v", payload["result"])
	}
	if got := payload["display"]; got != "5" {
		t.Fatalf("expected display %q, got %#v", "5", got)
	}
}

func TestNewRouterSessionFlow(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var created calculator.SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &created)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions/"+created.ID+"/keys",
		calculator.KeysRequest{Keys: []string{"9", "-", "4", "="}})
	w = testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp calculator.SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "5" || resp.History != "9 − 4 =" {
		t.Fatalf("unexpected session state: %+v", resp)
	}
}

func TestNewRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/calculator/sessions", nil)
	req.Header.Set("Origin", "http://calc.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := testutil.ExecuteRequest(req, router)

	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "http://calc.test" {
		t.Fatalf("expected allowed origin %q, got %q", "http://calc.test", got)
	}
}

func TestNewRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	_ = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/health", nil), router)
	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if !bytes.Contains(w.Body.Bytes(), []byte(`calculator_http_requests_total{method="GET",route="/health",status="200"}`)) {
		t.Fatal("expected health request to be counted by route")
	}
}
