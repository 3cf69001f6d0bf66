package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/lbriand/otpgate/internal/pkg/goerror"
	"github.com/lbriand/otpgate/internal/pkg/hash"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error %v is not a *goerror.Error", err)
	}
	return gerr.StatusCode()
}

func TestIssue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{saveID: 101}
	gw := &fakeGateway{}
	msgs := &fakeMessaging{}
	uc := newTestUsecase(t, Dependency{
		RepoDB:        db,
		RepoDirectory: &fakeDirectory{phone: "+33 6 12 34 56 78"},
		RepoGateway:   gw,
		RepoMessaging: msgs,
	})

	out, err := uc.Issue(context.Background(), IssueInput{UserID: 42})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.RecordID != 101 || out.UserID != 42 || !out.Delivered {
		t.Errorf("output = %+v", out)
	}
	if want := now.Add(2 * time.Minute); !out.ExpiresAt.Equal(want) {
		t.Errorf("expires at %v, want %v", out.ExpiresAt, want)
	}

	if len(db.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(db.saved))
	}
	digest, err := hash.NewHMACSHA256("test-secret").Hash("123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if db.saved[0].CodeDigest != string(digest) {
		t.Error("stored digest does not match the issued code")
	}

	if gw.sentTo != "0612345678" {
		t.Errorf("sent to %q, want normalized national number", gw.sentTo)
	}
	if !strings.Contains(gw.sentBody, "123456") || !strings.Contains(gw.sentBody, "2 minutes") {
		t.Errorf("message body = %q", gw.sentBody)
	}

	if len(msgs.issued) != 1 {
		t.Fatalf("published %d issued events, want 1", len(msgs.issued))
	}
	if evt := msgs.issued[0]; evt.RecordID != 101 || evt.UserID != 42 || !evt.Delivered {
		t.Errorf("issued event = %+v", evt)
	}
}

func TestIssueInvalidInput(t *testing.T) {
	uc := newTestUsecase(t, Dependency{})

	if _, err := uc.Issue(context.Background(), IssueInput{UserID: 0}); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestIssueRateLimited(t *testing.T) {
	db := &fakeDB{}
	uc := newTestUsecase(t, Dependency{
		RepoDB:  db,
		Limiter: &fakeLimiter{ok: false},
	})

	_, err := uc.Issue(context.Background(), IssueInput{UserID: 42})

	if got := statusOf(t, err); got != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", got, http.StatusTooManyRequests)
	}
	if len(db.saved) != 0 {
		t.Error("record saved despite the rate limit")
	}
}

func TestIssueLimiterError(t *testing.T) {
	db := &fakeDB{}
	uc := newTestUsecase(t, Dependency{
		RepoDB:  db,
		Limiter: &fakeLimiter{err: errors.New("connection refused")},
	})

	_, err := uc.Issue(context.Background(), IssueInput{UserID: 42})

	// A limiter outage denies issuance, it never fails open.
	if got := statusOf(t, err); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", got, http.StatusInternalServerError)
	}
	if len(db.saved) != 0 {
		t.Error("record saved despite the limiter failure")
	}
}

func TestIssueNoPhoneNumber(t *testing.T) {
	tests := []struct {
		name string
		dir  *fakeDirectory
	}{
		{name: "missing user", dir: &fakeDirectory{err: goerror.ErrNotFound}},
		{name: "empty phone", dir: &fakeDirectory{phone: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUsecase(t, Dependency{RepoDirectory: tt.dir})

			_, err := uc.Issue(context.Background(), IssueInput{UserID: 42})

			if got := statusOf(t, err); got != http.StatusNotFound {
				t.Errorf("status = %d, want %d", got, http.StatusNotFound)
			}
		})
	}
}

func TestIssueInvalidPhoneNumber(t *testing.T) {
	db := &fakeDB{saveID: 101}
	uc := newTestUsecase(t, Dependency{
		RepoDB:        db,
		RepoDirectory: &fakeDirectory{phone: "12345"},
	})

	_, err := uc.Issue(context.Background(), IssueInput{UserID: 42})

	if got := statusOf(t, err); got != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", got, http.StatusUnprocessableEntity)
	}
	// The record was persisted before the number was rejected.
	if len(db.saved) != 1 {
		t.Errorf("saved %d records, want 1", len(db.saved))
	}
}

func TestIssueDegradedDelivery(t *testing.T) {
	db := &fakeDB{saveID: 101}
	gw := &fakeGateway{sendErr: errors.New("gateway timeout")}
	msgs := &fakeMessaging{}
	uc := newTestUsecase(t, Dependency{
		RepoDB:        db,
		RepoGateway:   gw,
		RepoMessaging: msgs,
	})

	out, err := uc.Issue(context.Background(), IssueInput{UserID: 42})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Delivered {
		t.Error("Delivered = true while every send failed")
	}
	if out.RecordID != 101 {
		t.Errorf("record id = %d, want 101", out.RecordID)
	}
	if gw.sendCalls != testPolicy().DeliveryAttempts {
		t.Errorf("gateway called %d times, want %d", gw.sendCalls, testPolicy().DeliveryAttempts)
	}
	if len(msgs.issued) != 1 || msgs.issued[0].Delivered {
		t.Errorf("issued events = %+v", msgs.issued)
	}
}

func TestIssueSaveError(t *testing.T) {
	gw := &fakeGateway{}
	uc := newTestUsecase(t, Dependency{
		RepoDB:      &fakeDB{saveErr: errors.New("connection refused")},
		RepoGateway: gw,
	})

	_, err := uc.Issue(context.Background(), IssueInput{UserID: 42})

	if got := statusOf(t, err); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", got, http.StatusInternalServerError)
	}
	if gw.sendCalls != 0 {
		t.Error("gateway called for an unsaved code")
	}
}

func TestIssueIdempotencyReplay(t *testing.T) {
	db := &fakeDB{saveID: 101}
	uc := newTestUsecase(t, Dependency{RepoDB: db})
	in := IssueInput{UserID: 42, IdempotencyKey: "req-1"}

	out, err := uc.Issue(context.Background(), in)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if out.RecordID != 101 {
		t.Errorf("record id = %d, want 101", out.RecordID)
	}

	_, err = uc.Issue(context.Background(), in)

	if got := statusOf(t, err); got != http.StatusConflict {
		t.Errorf("replay status = %d, want %d", got, http.StatusConflict)
	}
	if len(db.saved) != 1 {
		t.Errorf("saved %d records, want 1", len(db.saved))
	}
}

// cancellingGateway fails the send and cancels the request context, as when
// the caller gives up while the delivery retry is still backing off.
type cancellingGateway struct {
	fakeGateway
	cancel context.CancelFunc
}

func (g *cancellingGateway) Send(ctx context.Context, to, message string) error {
	err := g.fakeGateway.Send(ctx, to, message)
	g.cancel()
	return err
}

func TestIssueCancelledDuringRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := &fakeDB{saveID: 101}
	gw := &cancellingGateway{
		fakeGateway: fakeGateway{sendErr: errors.New("gateway unreachable")},
		cancel:      cancel,
	}
	policy := DefaultPolicy()
	policy.DeliveryDelay = time.Hour
	uc := newTestUsecase(t, Dependency{RepoDB: db, RepoGateway: gw, Policy: policy})

	start := time.Now()
	out, err := uc.Issue(ctx, IssueInput{UserID: 42})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Delivered {
		t.Error("delivered = true, want degraded result")
	}
	if gw.sendCalls != 1 {
		t.Errorf("gateway called %d times, want 1 before cancellation", gw.sendCalls)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("issue took %v, cancellation should abort the retry backoff", elapsed)
	}
	if len(db.saved) != 1 {
		t.Errorf("saved %d records, want the persisted record kept", len(db.saved))
	}
}
