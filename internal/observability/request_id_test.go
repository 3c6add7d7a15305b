package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
)

func TestNewRequestIDReturnsUUID(t *testing.T) {
	id := NewRequestID()
	if id == "" {
		t.Fatal("expected non-empty request id")
	}

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected valid UUID, got %q: %v", id, err)
	}
}

func TestRequestIDFromContextWhenMissingOrWrongType(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		got := RequestIDFromContext(context.Background())
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, 42)
		got := RequestIDFromContext(ctx)
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	inbound := uuid.New().String()

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "mints when absent", header: "", wantSame: false},
		{name: "replaces non-uuid", header: "not-a-uuid", wantSame: false},
		{name: "propagates uuid", header: inbound, wantSame: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ctxRequestID string
			h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxRequestID = RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			r := httptest.NewRequest(http.MethodGet, "/calculator/sessions", nil)
			if tc.header != "" {
				r.Header.Set(RequestIDHeader, tc.header)
			}
			w := testutil.ExecuteRequest(r, h)

			headerRequestID := w.Result().Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(headerRequestID); err != nil {
				t.Fatalf("expected header to contain UUID, got %q: %v", headerRequestID, err)
			}
			if ctxRequestID != headerRequestID {
				t.Fatalf("expected context request_id %q to match header %q", ctxRequestID, headerRequestID)
			}
			if got := headerRequestID == tc.header; got != tc.wantSame {
				t.Fatalf("expected propagated=%t, got header %q for inbound %q", tc.wantSame, headerRequestID, tc.header)
			}
		})
	}
}
