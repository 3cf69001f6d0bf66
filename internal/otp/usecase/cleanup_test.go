package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestCleanup(t *testing.T) {
	uc := newTestUsecase(t, Dependency{RepoDB: &fakeDB{removed: 5}})

	out, err := uc.Cleanup(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Removed != 5 {
		t.Errorf("Removed = %d, want 5", out.Removed)
	}
}

func TestCleanupStorageError(t *testing.T) {
	uc := newTestUsecase(t, Dependency{RepoDB: &fakeDB{delErr: errors.New("connection refused")}})

	_, err := uc.Cleanup(context.Background())

	if got := statusOf(t, err); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", got, http.StatusInternalServerError)
	}
}
