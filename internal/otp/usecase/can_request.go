package usecase

import (
	"context"
	"log/slog"

	"github.com/lbriand/otpgate/internal/pkg/goerror"
)

type CanRequestAgainInput struct {
	UserID int64 `validate:"required,gt=0"`
}

type CanRequestAgainOutput struct {
	Allowed    bool
	WindowMins int
}

// CanRequestAgain exposes the issuance rate check read-only, for client UX
// like "retry in N minutes". It shares the limiter instance with Issue so the
// window and cap can never diverge.
func (s *Usecase) CanRequestAgain(ctx context.Context, in CanRequestAgainInput) (*CanRequestAgainOutput, error) {
	ctx, span := s.startSpan(ctx, "CanRequestAgain")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ok, err := s.limiter.CanIssue(ctx, in.UserID)
	if err != nil {
		// Same fail-closed stance as Issue: report unavailable.
		slog.ErrorContext(ctx, "failed to check issuance rate limit", "user_id", in.UserID, "error", err)
		ok = false
	}

	return &CanRequestAgainOutput{
		Allowed:    ok,
		WindowMins: int(s.policy.RateWindow.Minutes()),
	}, nil
}
