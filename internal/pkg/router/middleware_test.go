package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lbriand/otpgate/internal/pkg/instrument"
)

func tagMiddleware(tag string, order *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChainOrder(t *testing.T) {
	var order []string

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tagMiddleware("outer", &order), tagMiddleware("inner", &order))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("call order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("call order = %v, want %v", order, want)
		}
	}
}

func TestChainEmpty(t *testing.T) {
	called := false

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Fatal("handler was not called")
	}
}

func TestMiddlewareCorrelationIDPropagates(t *testing.T) {
	var cID string

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cID = instrument.GetCorrelationID(r.Context())
	}), middlewareCorrelationID(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if cID != "req-42" {
		t.Fatalf("correlation ID in context = %q, want %q", cID, "req-42")
	}
	if got := rec.Header().Get(HeaderCorrelationID); got != "req-42" {
		t.Fatalf("response header = %q, want %q", got, "req-42")
	}
}
