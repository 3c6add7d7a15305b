package calculator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/session"
	"go-chi-calculator/internal/testutil"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewSessions(session.NewService(session.NewMemoryStore(), 3)))
	return r
}

func createSession(t *testing.T, h http.Handler) SessionResponse {
	t.Helper()
	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), h)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func postEvents(t *testing.T, h http.Handler, id string, events ...EventRequest) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions/"+id+"/events", EventsRequest{Events: events})
	return testutil.ExecuteRequest(req, h)
}

func digit(d string) EventRequest { return EventRequest{Type: "digit", Digit: d} }
func operator(op string) EventRequest { return EventRequest{Type: "operator", Operator: op} }
func command(kind string) EventRequest { return EventRequest{Type: kind} }

func TestSessionLifecycle(t *testing.T) {
	h := newTestRouter(t)

	created := createSession(t, h)
	if created.ID == "" || created.Display != "0" || created.Version != 1 {
		t.Fatalf("unexpected new session: %+v", created)
	}

	w := postEvents(t, h, created.ID, digit("5"), operator("+"), digit("3"), operator("×"))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "0" || resp.History != "8 ×" || resp.Operator != "×" || !resp.EnteringSecondOperand {
		t.Fatalf("unexpected chained state: %+v", resp)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.History != "8 ×" || resp.Version != 2 {
		t.Fatalf("unexpected fetched state: %+v", resp)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+created.ID, nil), h)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.ID, nil), h)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestSessionRepeatEquals(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h).ID

	w := postEvents(t, h, id, digit("4"), operator("add"), digit("2"), command("equals"))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "6" || !resp.JustEvaluated {
		t.Fatalf("expected display 6 after equals, got %+v", resp)
	}

	w = postEvents(t, h, id, command("equals"))
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "8" || resp.History != "6 + 2 =" {
		t.Fatalf("expected repeat equals to show 8, got %+v", resp)
	}
}

func TestSessionDivideByZero(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h).ID

	w := postEvents(t, h, id, digit("5"), operator("/"), digit("0"), command("equals"))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "Error" {
		t.Fatalf("expected Error display, got %+v", resp)
	}

	w = postEvents(t, h, id, command("clear_all"), digit("7"))
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "7" || resp.History != "" {
		t.Fatalf("expected recovery after clear, got %+v", resp)
	}
}

func TestSessionEventsRejectInvalidBatch(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h).ID

	tests := []struct {
		name   string
		events []EventRequest
	}{
		{name: "unknown type", events: []EventRequest{digit("1"), command("sqrt")}},
		{name: "bad digit", events: []EventRequest{digit("1"), digit("12")}},
		{name: "letter digit", events: []EventRequest{digit("a")}},
		{name: "bad operator", events: []EventRequest{digit("1"), operator("%")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postEvents(t, h, id, tc.events...)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
		})
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+id, nil), h)
	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "0" || resp.Version != 1 {
		t.Fatalf("expected untouched session after rejected batches, got %+v", resp)
	}
}

func TestSessionKeys(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h).ID

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions/"+id+"/keys", KeysRequest{
		Keys: []string{"1", "2", "Shift", "*", "3", "Enter"},
	})
	w := testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "36" || resp.History != "12 × 3 =" {
		t.Fatalf("unexpected state after keys: %+v", resp)
	}
	if resp.IgnoredKeys != 1 {
		t.Fatalf("expected 1 ignored key, got %d", resp.IgnoredKeys)
	}
}

func TestSessionNotFound(t *testing.T) {
	h := newTestRouter(t)

	w := postEvents(t, h, "missing", digit("1"))
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/missing", nil), h)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestSessionMalformedBody(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h).ID

	for _, path := range []string{"/events", "/keys"} {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions/"+id+path, `{"events":[`)
		w := testutil.ExecuteRequest(req, h)
		testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
	}
}

func TestSessionKeysAllUnmappedLeavesVersion(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h).ID

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions/"+id+"/keys", KeysRequest{
		Keys: []string{"Shift", "Tab"},
	})
	w := testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Version != 1 || resp.Display != "0" {
		t.Fatalf("expected untouched session, got %+v", resp)
	}
	if resp.IgnoredKeys != 2 {
		t.Fatalf("expected 2 ignored keys, got %d", resp.IgnoredKeys)
	}
}
