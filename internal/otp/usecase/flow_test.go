package usecase

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/lbriand/otpgate/internal/otp/outbound/memory"
	"github.com/lbriand/otpgate/internal/otp/ratelimit"
	"github.com/lbriand/otpgate/internal/pkg/clock"
)

type sequenceID struct {
	mu   sync.Mutex
	next int64
}

func (s *sequenceID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	return s.next
}

// newFlowUsecase wires the usecase to the in-memory store and a movable
// clock, so full issue/verify flows run against real expiry and rate
// window arithmetic.
func newFlowUsecase(t *testing.T) (*Usecase, *clock.Fixed) {
	t.Helper()

	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewStore(&sequenceID{})
	policy := testPolicy()

	return newTestUsecase(t, Dependency{
		RepoDB:  store,
		Limiter: ratelimit.New(store, policy.RateWindow, policy.RateCap, clk),
		Clock:   clk,
	}), clk
}

func TestFlowIssueThenVerifyOnce(t *testing.T) {
	uc, _ := newFlowUsecase(t)
	ctx := context.Background()

	issued, err := uc.Issue(ctx, IssueInput{UserID: 42})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !issued.Delivered {
		t.Fatal("Delivered = false")
	}

	out, err := uc.Verify(ctx, VerifyInput{UserID: 42, Code: "123456"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !out.Verified {
		t.Fatal("first Verify = false")
	}

	out, err = uc.Verify(ctx, VerifyInput{UserID: 42, Code: "123456"})
	if err != nil {
		t.Fatalf("verify replay: %v", err)
	}
	if out.Verified {
		t.Fatal("replayed Verify = true")
	}
}

func TestFlowVerifyAfterExpiry(t *testing.T) {
	uc, clk := newFlowUsecase(t)
	ctx := context.Background()

	if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.Advance(3 * time.Minute)

	out, err := uc.Verify(ctx, VerifyInput{UserID: 42, Code: "123456"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Verified {
		t.Fatal("Verify = true past the TTL")
	}
}

func TestFlowRateWindow(t *testing.T) {
	uc, clk := newFlowUsecase(t)
	ctx := context.Background()

	for i := range 3 {
		if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
			t.Fatalf("issue %d: %v", i+1, err)
		}
	}

	_, err := uc.Issue(ctx, IssueInput{UserID: 42})
	if got := statusOf(t, err); got != http.StatusTooManyRequests {
		t.Fatalf("4th issue status = %d, want %d", got, http.StatusTooManyRequests)
	}

	avail, err := uc.CanRequestAgain(ctx, CanRequestAgainInput{UserID: 42})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if avail.Allowed {
		t.Error("Allowed = true while capped")
	}

	clk.Advance(31 * time.Minute)

	if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
		t.Fatalf("issue after window elapsed: %v", err)
	}
}

func TestFlowConcurrentVerify(t *testing.T) {
	uc, _ := newFlowUsecase(t)
	ctx := context.Background()

	if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	const workers = 16
	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			out, err := uc.Verify(ctx, VerifyInput{UserID: 42, Code: "123456"})
			if err != nil {
				t.Errorf("verify: %v", err)
				return
			}
			if out.Verified {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d of %d concurrent verifiers succeeded, want exactly 1", wins, workers)
	}
}

func TestFlowOlderCodeStaysValid(t *testing.T) {
	uc, _ := newFlowUsecase(t)
	ctx := context.Background()

	// Issuing again does not invalidate the previous still-valid code; both
	// verify until consumed or expired.
	if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
		t.Fatalf("second issue: %v", err)
	}

	out, err := uc.Verify(ctx, VerifyInput{UserID: 42, Code: "123456"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !out.Verified {
		t.Fatal("Verify = false with two live codes outstanding")
	}
}

func TestFlowCleanupKeepsLiveRecords(t *testing.T) {
	uc, clk := newFlowUsecase(t)
	ctx := context.Background()

	if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	clk.Advance(3 * time.Minute) // first record expires

	if _, err := uc.Issue(ctx, IssueInput{UserID: 42}); err != nil {
		t.Fatalf("second issue: %v", err)
	}

	swept, err := uc.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if swept.Removed != 1 {
		t.Errorf("Removed = %d, want 1", swept.Removed)
	}

	out, err := uc.Verify(ctx, VerifyInput{UserID: 42, Code: "123456"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !out.Verified {
		t.Fatal("live record removed by cleanup")
	}
}
