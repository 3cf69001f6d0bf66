package tests

import (
	"net/http"
	"testing"
)

func TestOTPGatewayHealth(t *testing.T) {
	status, body := doJSON(t, http.MethodGet, "/api/v1/otp/gateway/health", nil, "")
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("gateway health failed: status=%d message=%q", status, errEnv.Message)
	}

	var data struct {
		Healthy *bool `json:"healthy"`
	}
	env := decodeSuccess(t, body, &data)
	if data.Healthy == nil {
		t.Fatalf("missing healthy field in %s", string(env.Data))
	}
}

func TestOTPCleanupRequiresAuth(t *testing.T) {
	status, body := doJSON(t, http.MethodPost, "/api/v1/otp/cleanup", nil, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("got status %d body=%s, want %d", status, string(body), http.StatusUnauthorized)
	}
}
