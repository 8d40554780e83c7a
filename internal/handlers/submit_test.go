package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubmitRecordsSignup(t *testing.T) {
	sink := &fakeSink{}
	h := newTestHandler(t, sink, nil, Config{})

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/submit",
		strings.NewReader(`{"email":"a@b.com","tier":"waitlist","utmData":{"utm_campaign":"launch"},"pageUrl":"https://example.com/"}`))
	h.Submit(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rw.Code, rw.Body.String())
	}
	body := decodeBody(t, rw)
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Fatal("expected a non-empty message")
	}

	if len(sink.records) != 1 {
		t.Fatalf("ledger appends = %d, want 1", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Email != "a@b.com" || rec.Tier != "waitlist" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Captured {
		t.Fatal("form submissions must not be marked captured")
	}
	if rec.Source != "landing_page" {
		t.Fatalf("source = %q", rec.Source)
	}
	if rec.UTMCampaign != "launch" {
		t.Fatalf("utm_campaign = %q", rec.UTMCampaign)
	}
}

func TestSubmitInvalidEmail(t *testing.T) {
	sink := &fakeSink{}
	h := newTestHandler(t, sink, nil, Config{})

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/submit",
		strings.NewReader(`{"email":"not-an-email","tier":"waitlist"}`))
	h.Submit(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rw.Code)
	}
	if len(sink.records) != 0 {
		t.Fatal("invalid submissions must not reach the ledger")
	}
}

func TestSubmitInvalidTier(t *testing.T) {
	h := newTestHandler(t, &fakeSink{}, nil, Config{})

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/submit",
		strings.NewReader(`{"email":"a@b.com","tier":"gold"}`))
	h.Submit(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rw.Code)
	}
	if msg := decodeBody(t, rw)["error"]; msg != "Invalid tier" {
		t.Fatalf("error = %v", msg)
	}
}

func TestSubmitRejectsNonPOST(t *testing.T) {
	sink := &fakeSink{}
	h := newTestHandler(t, sink, nil, Config{})

	rw := httptest.NewRecorder()
	h.Submit(rw, httptest.NewRequest(http.MethodGet, "/api/submit", nil))

	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rw.Code)
	}
	if allow := rw.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow = %q, want POST", allow)
	}
	if len(sink.records) != 0 {
		t.Fatal("rejected requests must not reach the ledger")
	}
}

func TestSubmitSinkFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("sheet unavailable")}
	h := newTestHandler(t, sink, nil, Config{})

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/submit",
		strings.NewReader(`{"email":"a@b.com","tier":"starter_PENDING"}`))
	h.Submit(rw, req)

	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 when the signup was not recorded", rw.Code)
	}
}
