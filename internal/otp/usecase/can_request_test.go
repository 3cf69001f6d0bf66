package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestCanRequestAgain(t *testing.T) {
	tests := []struct {
		name    string
		limiter *fakeLimiter
		allowed bool
	}{
		{name: "allowed", limiter: &fakeLimiter{ok: true}, allowed: true},
		{name: "capped", limiter: &fakeLimiter{ok: false}, allowed: false},
		{name: "limiter failure reads as unavailable", limiter: &fakeLimiter{err: errors.New("connection refused")}, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUsecase(t, Dependency{Limiter: tt.limiter})

			out, err := uc.CanRequestAgain(context.Background(), CanRequestAgainInput{UserID: 42})

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", out.Allowed, tt.allowed)
			}
			if out.WindowMins != 30 {
				t.Errorf("WindowMins = %d, want 30", out.WindowMins)
			}
		})
	}
}

func TestCanRequestAgainInvalidInput(t *testing.T) {
	uc := newTestUsecase(t, Dependency{})

	if _, err := uc.CanRequestAgain(context.Background(), CanRequestAgainInput{UserID: 0}); err == nil {
		t.Fatal("expected a validation error")
	}
}
