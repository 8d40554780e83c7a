package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v79"
)

func TestCreateCheckout(t *testing.T) {
	h := newTestHandler(t, nil, nil, Config{PublicBaseURL: "https://example.com"})
	var gotParams *stripe.CheckoutSessionParams
	h.createSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		gotParams = params
		return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
	}

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout",
		strings.NewReader(`{"email":"a@b.com","tier":"starter","utmData":{"utm_source":"newsletter"}}`))
	h.CreateCheckout(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rw.Code, rw.Body.String())
	}
	url, _ := decodeBody(t, rw)["url"].(string)
	if url == "" {
		t.Fatal("expected a non-empty checkout url")
	}

	if gotParams == nil {
		t.Fatal("createSession was not called")
	}
	if mode := stripe.StringValue(gotParams.Mode); mode != "setup" {
		t.Fatalf("session mode = %q, want setup", mode)
	}
	if email := stripe.StringValue(gotParams.CustomerEmail); email != "a@b.com" {
		t.Fatalf("customer email = %q", email)
	}
	if gotParams.Metadata["tier"] != "starter" {
		t.Fatalf("tier metadata = %q", gotParams.Metadata["tier"])
	}
	if gotParams.Metadata["utm_source"] != "newsletter" {
		t.Fatalf("utm_source metadata = %q", gotParams.Metadata["utm_source"])
	}
	if gotParams.Metadata["signup_timestamp"] == "" {
		t.Fatal("signup_timestamp metadata missing")
	}
	if su := stripe.StringValue(gotParams.SuccessURL); !strings.HasPrefix(su, "https://example.com/success.html?tier=starter") {
		t.Fatalf("success url = %q", su)
	}
}

func TestCheckoutParamsDisplayAmounts(t *testing.T) {
	h := newTestHandler(t, nil, nil, Config{})

	_, desc, err := h.checkoutParams("a@b.com", "starter", UTMData{})
	if err != nil {
		t.Fatalf("starter: %v", err)
	}
	if desc.Amount != 2900 {
		t.Fatalf("starter amount = %d, want 2900", desc.Amount)
	}

	_, desc, err = h.checkoutParams("a@b.com", "founding_pro", UTMData{})
	if err != nil {
		t.Fatalf("founding_pro: %v", err)
	}
	if desc.Amount != 4900 {
		t.Fatalf("founding_pro amount = %d, want 4900", desc.Amount)
	}
}

func TestCreateCheckoutInvalidTier(t *testing.T) {
	h := newTestHandler(t, nil, nil, Config{})
	h.createSession = func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		t.Fatal("createSession must not be called for an invalid tier")
		return nil, nil
	}

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout",
		strings.NewReader(`{"email":"a@b.com","tier":"gold"}`))
	h.CreateCheckout(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rw.Code)
	}
	if msg := decodeBody(t, rw)["error"]; msg != "Invalid tier for checkout" {
		t.Fatalf("error = %v", msg)
	}
}

func TestCreateCheckoutMissingFields(t *testing.T) {
	h := newTestHandler(t, nil, nil, Config{})

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout",
		strings.NewReader(`{"tier":"starter"}`))
	h.CreateCheckout(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rw.Code)
	}
	if msg := decodeBody(t, rw)["error"]; msg != "Email and tier are required" {
		t.Fatalf("error = %v", msg)
	}
}

func TestCreateCheckoutUpstreamFailure(t *testing.T) {
	h := newTestHandler(t, nil, nil, Config{})
	h.createSession = func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("stripe is down")
	}

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout",
		strings.NewReader(`{"email":"a@b.com","tier":"starter"}`))
	h.CreateCheckout(rw, req)

	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rw.Code)
	}
}

func TestCreateCheckoutRejectsNonPOST(t *testing.T) {
	h := newTestHandler(t, nil, nil, Config{})
	rw := httptest.NewRecorder()
	h.CreateCheckout(rw, httptest.NewRequest(http.MethodGet, "/api/create-checkout", nil))

	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rw.Code)
	}
	if allow := rw.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow = %q, want POST", allow)
	}
}
