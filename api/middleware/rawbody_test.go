package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCaptureRawBodyPreservesExactBytes(t *testing.T) {
	payload := []byte("{\"id\": \"evt_1\",\n  \"type\":\"checkout.session.completed\"}")

	var fromContext, fromBody []byte
	handler := CaptureRawBody(1024, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := RawBodyFromContext(r.Context())
		if !ok {
			t.Fatal("expected raw body in context")
		}
		fromContext = raw
		fromBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !bytes.Equal(fromContext, payload) {
		t.Fatalf("context bytes differ: %q", fromContext)
	}
	if !bytes.Equal(fromBody, payload) {
		t.Fatalf("body bytes differ: %q", fromBody)
	}
}

func TestCaptureRawBodyRejectsOversizedPayload(t *testing.T) {
	called := false
	handler := CaptureRawBody(8, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("0123456789abcdef")))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", resp.Code)
	}
	if called {
		t.Fatal("handler should not run for oversized body")
	}
}

func TestCaptureRawBodySkipsEmptyBody(t *testing.T) {
	var ok bool
	handler := CaptureRawBody(0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = RawBodyFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Fatal("expected no raw body for empty request")
	}
}
