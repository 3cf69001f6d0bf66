package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lbriand/otpgate/internal/pkg/goerror"
)

type VerifyInput struct {
	UserID int64  `validate:"required,gt=0"`
	Code   string `validate:"required"`
}

type VerifyOutput struct {
	Verified    bool
	AccessToken string
}

// Verify consumes a valid code at most once. Every failure mode short of a
// missing field collapses into Verified=false: wrong, malformed, expired and
// replayed codes as well as storage errors are indistinguishable to the
// caller, so a probing client learns nothing beyond the boolean.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if !codeShape(in.Code, s.policy.CodeLength) {
		slog.WarnContext(ctx, "verification code has wrong shape", "user_id", in.UserID)
		return &VerifyOutput{Verified: false}, nil
	}

	digest, err := s.hmac.Hash(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification code", "user_id", in.UserID, "error", err)
		return &VerifyOutput{Verified: false}, nil
	}

	now := s.clock.Now()

	record, err := s.repoDB.FindValid(ctx, in.UserID, string(digest), now)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no matching valid verification code", "user_id", in.UserID)
		return &VerifyOutput{Verified: false}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find verification code", "user_id", in.UserID, "error", err)
		return &VerifyOutput{Verified: false}, nil
	}

	consumed, err := s.repoDB.MarkUsed(ctx, record.ID, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark verification code used", "user_id", in.UserID, "record_id", record.ID, "error", err)
		return &VerifyOutput{Verified: false}, nil
	}
	if !consumed {
		// A concurrent Verify won the race for the same record.
		slog.WarnContext(ctx, "verification code already consumed", "user_id", in.UserID, "record_id", record.ID)
		return &VerifyOutput{Verified: false}, nil
	}

	// The record is consumed at this point; a token failure must not undo the
	// verification outcome, the caller just gets no session token.
	token, err := s.jwt.Generate(in.UserID, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", in.UserID, "error", err)
		token = ""
	}

	if err := s.repoMessaging.PublishVerified(ctx, VerifiedEvent{
		RecordID:   record.ID,
		UserID:     in.UserID,
		VerifiedAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish code verification", "user_id", in.UserID, "error", err)
	}

	return &VerifyOutput{
		Verified:    true,
		AccessToken: token,
	}, nil
}

// codeShape reports whether code is exactly length decimal digits. Codes with
// any other shape can never match a stored digest, so they are rejected before
// touching storage while still collapsing into the uniform false outcome.
func codeShape(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
