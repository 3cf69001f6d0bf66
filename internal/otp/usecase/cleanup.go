package usecase

import (
	"context"
	"log/slog"

	"github.com/lbriand/otpgate/internal/pkg/goerror"
)

type CleanupOutput struct {
	Removed int64
}

// Cleanup removes records that are used or expired. Still-valid unused
// records are never touched, so a failure here only affects storage growth,
// never issuance or verification correctness.
func (s *Usecase) Cleanup(ctx context.Context) (*CleanupOutput, error) {
	ctx, span := s.startSpan(ctx, "Cleanup")
	defer span.End()

	removed, err := s.repoDB.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired verification codes", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "verification code cleanup finished", "removed", removed)

	return &CleanupOutput{Removed: removed}, nil
}
