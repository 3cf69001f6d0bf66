package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/lbriand/otpgate/internal/otp/entity"
	"github.com/lbriand/otpgate/internal/pkg/clock"
	"github.com/lbriand/otpgate/internal/pkg/hash"
	"github.com/lbriand/otpgate/internal/pkg/idempotency"
	"github.com/lbriand/otpgate/internal/pkg/instrument"
	"github.com/lbriand/otpgate/internal/pkg/jwt"
	"github.com/lbriand/otpgate/internal/pkg/validator"
)

type fakeDB struct {
	saveID  int64
	saveErr error
	saved   []entity.NewOTP

	record     *entity.OTP
	findErr    error
	findDigest string

	consumed  bool
	markErr   error
	markedID  int64
	markCalls int

	count    int64
	countErr error

	removed int64
	delErr  error
}

func (f *fakeDB) Save(_ context.Context, in entity.NewOTP) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, in)
	return f.saveID, nil
}

func (f *fakeDB) FindValid(_ context.Context, _ int64, codeDigest string, _ time.Time) (*entity.OTP, error) {
	f.findDigest = codeDigest
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.record, nil
}

func (f *fakeDB) MarkUsed(_ context.Context, id int64, _ time.Time) (bool, error) {
	f.markCalls++
	f.markedID = id
	if f.markErr != nil {
		return false, f.markErr
	}
	return f.consumed, nil
}

func (f *fakeDB) CountRecent(_ context.Context, _ int64, _ time.Time) (int64, error) {
	return f.count, f.countErr
}

func (f *fakeDB) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return f.removed, f.delErr
}

type fakeDirectory struct {
	phone string
	err   error
}

func (f *fakeDirectory) PhoneNumber(context.Context, int64) (string, error) {
	return f.phone, f.err
}

type fakeGateway struct {
	sendErr   error
	sendCalls int
	sentTo    string
	sentBody  string
	healthy   bool
}

func (f *fakeGateway) Send(_ context.Context, to, message string) error {
	f.sendCalls++
	f.sentTo = to
	f.sentBody = message
	return f.sendErr
}

func (f *fakeGateway) Healthy(context.Context) bool {
	return f.healthy
}

type fakeMessaging struct {
	issued   []IssuedEvent
	verified []VerifiedEvent
	err      error
}

func (f *fakeMessaging) PublishIssued(_ context.Context, msg IssuedEvent) error {
	f.issued = append(f.issued, msg)
	return f.err
}

func (f *fakeMessaging) PublishVerified(_ context.Context, msg VerifiedEvent) error {
	f.verified = append(f.verified, msg)
	return f.err
}

type fakeLimiter struct {
	ok  bool
	err error
}

func (f *fakeLimiter) CanIssue(context.Context, int64) (bool, error) {
	return f.ok, f.err
}

type fakeCodes struct {
	code string
}

func (f *fakeCodes) Generate() string {
	return f.code
}

type fakeJWT struct {
	token string
	err   error
}

func (f *fakeJWT) Generate(int64, string) (string, error) {
	return f.token, f.err
}

func (f *fakeJWT) Verify(string) (jwt.Claims, error) {
	return jwt.Claims{}, jwt.ErrInvalidToken
}

// fakeIdempotency replays completed keys as duplicates, the way the Redis
// backed tracker does.
type fakeIdempotency struct {
	seen map[string]struct{}
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{seen: map[string]struct{}{}}
}

func (f *fakeIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (f *fakeIdempotency) MarkCompleted(context.Context, string, time.Duration) error {
	return nil
}

func (f *fakeIdempotency) MarkFailed(context.Context, string, time.Duration) error {
	return nil
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	if _, ok := f.seen[key]; ok {
		return idempotency.ErrAlreadyCompleted
	}
	f.seen[key] = struct{}{}
	return fn(ctx)
}

func testPolicy() Policy {
	p := DefaultPolicy()
	p.DeliveryDelay = time.Millisecond
	return p
}

func newTestUsecase(t *testing.T, dep Dependency) *Usecase {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	if dep.RepoDB == nil {
		dep.RepoDB = &fakeDB{}
	}
	if dep.RepoDirectory == nil {
		dep.RepoDirectory = &fakeDirectory{phone: "0612345678"}
	}
	if dep.RepoGateway == nil {
		dep.RepoGateway = &fakeGateway{}
	}
	if dep.RepoMessaging == nil {
		dep.RepoMessaging = &fakeMessaging{}
	}
	if dep.Limiter == nil {
		dep.Limiter = &fakeLimiter{ok: true}
	}
	if dep.Idempotency == nil {
		dep.Idempotency = newFakeIdempotency()
	}
	if dep.Codes == nil {
		dep.Codes = &fakeCodes{code: "123456"}
	}
	if dep.Policy == (Policy{}) {
		dep.Policy = testPolicy()
	}
	if dep.HMAC == nil {
		dep.HMAC = hash.NewHMACSHA256("test-secret")
	}
	if dep.Clock == nil {
		dep.Clock = clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	}
	if dep.JWT == nil {
		dep.JWT = &fakeJWT{token: "signed-token"}
	}
	dep.Validator = v
	dep.Instrument = instrument.NewNoop()

	return New(dep)
}
