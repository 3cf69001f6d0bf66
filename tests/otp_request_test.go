package tests

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"
)

type requestOTPData struct {
	RecordID  string `json:"record_id"`
	Delivered bool   `json:"delivered"`
	ExpiresAt string `json:"expires_at"`
}

func requestCode(t *testing.T, userID int64, headers map[string]string) (int, []byte) {
	t.Helper()

	payload := map[string]string{
		"user_id": strconv.FormatInt(userID, 10),
	}

	return doJSONHeaders(t, http.MethodPost, "/api/v1/otp/request", payload, "", headers)
}

func TestOTPRequest(t *testing.T) {
	status, body := requestCode(t, testUserID(), nil)
	if status == http.StatusTooManyRequests {
		t.Skip("rate limit window exhausted for the seeded user")
	}
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("request otp failed: status=%d message=%q", status, errEnv.Message)
	}

	var data requestOTPData
	decodeSuccess(t, body, &data)

	if data.RecordID == "" {
		t.Error("missing record id")
	}
	expiresAt, err := time.Parse(time.RFC3339, data.ExpiresAt)
	if err != nil {
		t.Fatalf("parse expires_at: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expires_at %s is not in the future", data.ExpiresAt)
	}
}

func TestOTPRequestInvalidUser(t *testing.T) {
	status, _ := requestCode(t, 0, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want %d", status, http.StatusUnprocessableEntity)
	}
}

func TestOTPRequestUnknownUser(t *testing.T) {
	status, body := requestCode(t, 999999999999, nil)
	if status == http.StatusTooManyRequests {
		t.Skip("rate limit window exhausted")
	}
	if status != http.StatusNotFound {
		errEnv := decodeError(t, body)
		t.Fatalf("got status %d message=%q, want %d", status, errEnv.Message, http.StatusNotFound)
	}
}

func TestOTPRequestIdempotencyReplay(t *testing.T) {
	headers := map[string]string{
		"Idempotency-Key": fmt.Sprintf("real-test-%d", time.Now().UnixNano()),
	}

	status, _ := requestCode(t, testUserID(), headers)
	if status == http.StatusTooManyRequests {
		t.Skip("rate limit window exhausted for the seeded user")
	}
	if status != http.StatusOK {
		t.Fatalf("first request failed: status=%d", status)
	}

	status, _ = requestCode(t, testUserID(), headers)
	if status != http.StatusConflict {
		t.Fatalf("replay got status %d, want %d", status, http.StatusConflict)
	}
}
