package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lbriand/otpgate/internal/otp/entity"
	"github.com/lbriand/otpgate/internal/pkg/goerror"
	"github.com/lbriand/otpgate/internal/pkg/hash"
)

func verifiableRecord(t *testing.T, code string, now time.Time) *entity.OTP {
	t.Helper()

	digest, err := hash.NewHMACSHA256("test-secret").Hash(code)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	return &entity.OTP{
		ID:         101,
		UserID:     42,
		CodeDigest: string(digest),
		CreatedAt:  now.Add(-time.Minute),
		ExpiresAt:  now.Add(time.Minute),
	}
}

func TestVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{record: verifiableRecord(t, "123456", now), consumed: true}
	msgs := &fakeMessaging{}
	uc := newTestUsecase(t, Dependency{RepoDB: db, RepoMessaging: msgs})

	out, err := uc.Verify(context.Background(), VerifyInput{UserID: 42, Code: "123456"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Verified {
		t.Fatal("Verified = false")
	}
	if out.AccessToken != "signed-token" {
		t.Errorf("access token = %q", out.AccessToken)
	}
	if db.markedID != 101 {
		t.Errorf("marked record %d, want 101", db.markedID)
	}
	if len(msgs.verified) != 1 {
		t.Fatalf("published %d verified events, want 1", len(msgs.verified))
	}
	if evt := msgs.verified[0]; evt.RecordID != 101 || evt.UserID != 42 || !evt.VerifiedAt.Equal(now) {
		t.Errorf("verified event = %+v", evt)
	}
}

func TestVerifyInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   VerifyInput
	}{
		{name: "zero user", in: VerifyInput{UserID: 0, Code: "123456"}},
		{name: "empty code", in: VerifyInput{UserID: 42, Code: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUsecase(t, Dependency{})

			if _, err := uc.Verify(context.Background(), tt.in); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestVerifyWrongShape(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "too short", code: "12345"},
		{name: "too long", code: "1234567"},
		{name: "non numeric", code: "12a456"},
		{name: "letters only", code: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{}
			uc := newTestUsecase(t, Dependency{RepoDB: db})

			out, err := uc.Verify(context.Background(), VerifyInput{UserID: 42, Code: tt.code})

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Verified {
				t.Error("Verified = true for a malformed code")
			}
			if db.findDigest != "" {
				t.Error("storage queried for a code of the wrong shape")
			}
		})
	}
}

func TestVerifyFailuresCollapseToFalse(t *testing.T) {
	tests := []struct {
		name string
		db   *fakeDB
	}{
		{name: "no matching record", db: &fakeDB{findErr: goerror.ErrNotFound}},
		{name: "storage error on find", db: &fakeDB{findErr: errors.New("connection refused")}},
		{name: "storage error on consume", db: func() *fakeDB {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			return &fakeDB{record: mustRecord(now), markErr: errors.New("connection refused")}
		}()},
		{name: "lost the consumption race", db: func() *fakeDB {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			return &fakeDB{record: mustRecord(now), consumed: false}
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := &fakeMessaging{}
			uc := newTestUsecase(t, Dependency{RepoDB: tt.db, RepoMessaging: msgs})

			out, err := uc.Verify(context.Background(), VerifyInput{UserID: 42, Code: "123456"})

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Verified {
				t.Error("Verified = true")
			}
			if out.AccessToken != "" {
				t.Error("access token issued without verification")
			}
			if len(msgs.verified) != 0 {
				t.Error("verified event published without verification")
			}
		})
	}
}

func TestVerifyTokenFailureKeepsOutcome(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{record: verifiableRecord(t, "123456", now), consumed: true}
	uc := newTestUsecase(t, Dependency{
		RepoDB: db,
		JWT:    &fakeJWT{err: errors.New("signing key unavailable")},
	})

	out, err := uc.Verify(context.Background(), VerifyInput{UserID: 42, Code: "123456"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The record is already consumed; the outcome must hold without a token.
	if !out.Verified {
		t.Error("Verified = false after the record was consumed")
	}
	if out.AccessToken != "" {
		t.Errorf("access token = %q, want empty", out.AccessToken)
	}
}

func mustRecord(now time.Time) *entity.OTP {
	digest, err := hash.NewHMACSHA256("test-secret").Hash("123456")
	if err != nil {
		panic(err)
	}

	return &entity.OTP{
		ID:         101,
		UserID:     42,
		CodeDigest: string(digest),
		CreatedAt:  now.Add(-time.Minute),
		ExpiresAt:  now.Add(time.Minute),
	}
}
