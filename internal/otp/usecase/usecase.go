package usecase

import (
	"context"
	"time"

	"github.com/lbriand/otpgate/internal/otp/entity"
	"github.com/lbriand/otpgate/internal/pkg/clock"
	"github.com/lbriand/otpgate/internal/pkg/hash"
	"github.com/lbriand/otpgate/internal/pkg/idempotency"
	"github.com/lbriand/otpgate/internal/pkg/instrument"
	"github.com/lbriand/otpgate/internal/pkg/jwt"
	"github.com/lbriand/otpgate/internal/pkg/otpcode"
	"github.com/lbriand/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// Policy fixes the protocol constants of the verification flow. They are
// injected at construction so the thresholds stay testable, and they are not
// reloadable at runtime.
type Policy struct {
	// CodeLength is the number of decimal digits per code.
	CodeLength int
	// TTL is how long a code stays verifiable after issuance.
	TTL time.Duration
	// RateWindow is the rolling window the issuance cap applies to.
	RateWindow time.Duration
	// RateCap is the maximum issuances per user inside RateWindow.
	RateCap int64
	// DeliveryAttempts is the total number of gateway send attempts.
	DeliveryAttempts int
	// DeliveryDelay is the pause between send attempts.
	DeliveryDelay time.Duration
}

// DefaultPolicy returns the standard protocol constants.
func DefaultPolicy() Policy {
	return Policy{
		CodeLength:       6,
		TTL:              2 * time.Minute,
		RateWindow:       30 * time.Minute,
		RateCap:          3,
		DeliveryAttempts: 2,
		DeliveryDelay:    3 * time.Second,
	}
}

type IssuedEvent struct {
	RecordID  int64
	UserID    int64
	Delivered bool
	ExpiresAt time.Time
}

type VerifiedEvent struct {
	RecordID   int64
	UserID     int64
	VerifiedAt time.Time
}

type repoDB interface {
	Save(ctx context.Context, in entity.NewOTP) (int64, error)
	FindValid(ctx context.Context, userID int64, codeDigest string, now time.Time) (*entity.OTP, error)
	MarkUsed(ctx context.Context, id int64, now time.Time) (bool, error)
	CountRecent(ctx context.Context, userID int64, since time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repoDirectory interface {
	PhoneNumber(ctx context.Context, userID int64) (string, error)
}

type repoGateway interface {
	Send(ctx context.Context, to, message string) error
	Healthy(ctx context.Context) bool
}

type repoMessaging interface {
	PublishIssued(ctx context.Context, msg IssuedEvent) error
	PublishVerified(ctx context.Context, msg VerifiedEvent) error
}

type limiter interface {
	CanIssue(ctx context.Context, userID int64) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoDirectory repoDirectory
	repoGateway   repoGateway
	repoMessaging repoMessaging
	limiter       limiter
	idemp         idempotency.Idempotency
	codes         otpcode.Generator
	policy        Policy
	validator     validator.Validator
	hmac          hash.Hash
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoDirectory repoDirectory
	RepoGateway   repoGateway
	RepoMessaging repoMessaging
	Limiter       limiter
	Idempotency   idempotency.Idempotency
	Codes         otpcode.Generator
	Policy        Policy
	Validator     validator.Validator
	HMAC          hash.Hash
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoDirectory: dep.RepoDirectory,
		repoGateway:   dep.RepoGateway,
		repoMessaging: dep.RepoMessaging,
		limiter:       dep.Limiter,
		idemp:         dep.Idempotency,
		codes:         dep.Codes,
		policy:        dep.Policy,
		validator:     dep.Validator,
		hmac:          dep.HMAC,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}
