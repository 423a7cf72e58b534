package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caffeineduck/jsru/engine"
)

func setupTestServer(t *testing.T) *http.ServeMux {
	t.Helper()

	cm := newContextManager(15*time.Minute, engine.WithConsole(false))
	t.Cleanup(cm.closeAll)
	return newServeMux(cm)
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	mux := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("expected 'ok', got %q", w.Body.String())
	}
}

func TestStatelessEval(t *testing.T) {
	mux := setupTestServer(t)

	w := postJSON(t, mux, "/eval", `{"code": "1 + 2 + 3"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp evalResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Value != 6.0 {
		t.Errorf("got %#v, want 6", resp.Value)
	}
}

func TestStatelessEvalError(t *testing.T) {
	mux := setupTestServer(t)

	w := postJSON(t, mux, "/eval", `{"code": "throw new Error('nope')"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", w.Code)
	}

	var resp evalResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestContextLifecycle(t *testing.T) {
	mux := setupTestServer(t)

	w := postJSON(t, mux, "/contexts", `{"init": "function add(a, b) { return a + b; } globalThis.x = 0;"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var created createContextResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ContextID == "" {
		t.Fatal("expected a context id")
	}

	// State persists across eval calls on the same context.
	w = postJSON(t, mux, "/contexts/"+created.ContextID+"/eval", `{"code": "x = 41; x + 1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("eval: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp evalResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Value != 42.0 {
		t.Errorf("eval: got %#v, want 42", resp.Value)
	}

	w = postJSON(t, mux, "/contexts/"+created.ContextID+"/call", `{"name": "add", "args": [2, 3]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("call: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Value != 5.0 {
		t.Errorf("call: got %#v, want 5", resp.Value)
	}

	// Delete, then the context is gone.
	req := httptest.NewRequest(http.MethodDelete, "/contexts/"+created.ContextID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected status 204, got %d", rec.Code)
	}

	w = postJSON(t, mux, "/contexts/"+created.ContextID+"/eval", `{"code": "1"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", w.Code)
	}
}

func TestInterruptedContextIsEvicted(t *testing.T) {
	mux := setupTestServer(t)

	w := postJSON(t, mux, "/contexts", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var created createContextResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	// Simulate a client that goes away mid-drain: the request deadline
	// fires while the timer is still scheduled on the context's loop.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/contexts/"+created.ContextID+"/eval",
		bytes.NewBufferString(`{"code": "new Promise(r => setTimeout(() => r('early'), 250))"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rec.Code, rec.Body.String())
	}

	// The interrupted context is gone; a later request cannot be served
	// a value left behind by the aborted run.
	w = postJSON(t, mux, "/contexts/"+created.ContextID+"/eval", `{"code": "1 + 1"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after interrupt, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnknownContext(t *testing.T) {
	mux := setupTestServer(t)

	w := postJSON(t, mux, "/contexts/deadbeef/eval", `{"code": "1"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestEvalRequiresCode(t *testing.T) {
	mux := setupTestServer(t)

	w := postJSON(t, mux, "/eval", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestEvalNoAwait(t *testing.T) {
	mux := setupTestServer(t)

	w := postJSON(t, mux, "/eval", `{"code": "Promise.resolve(42)", "await": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp evalResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if _, ok := resp.Value.(map[string]any); !ok {
		t.Errorf("expected raw promise object, got %#v", resp.Value)
	}
}
