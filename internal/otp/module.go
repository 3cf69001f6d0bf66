package otp

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lbriand/otpgate/internal/otp/inbound"
	"github.com/lbriand/otpgate/internal/otp/outbound/db"
	"github.com/lbriand/otpgate/internal/otp/outbound/directory"
	"github.com/lbriand/otpgate/internal/otp/outbound/gateway"
	"github.com/lbriand/otpgate/internal/otp/outbound/mq"
	"github.com/lbriand/otpgate/internal/otp/ratelimit"
	"github.com/lbriand/otpgate/internal/otp/usecase"
	"github.com/lbriand/otpgate/internal/pkg/clock"
	"github.com/lbriand/otpgate/internal/pkg/config"
	"github.com/lbriand/otpgate/internal/pkg/goroutine"
	"github.com/lbriand/otpgate/internal/pkg/hash"
	"github.com/lbriand/otpgate/internal/pkg/idempotency"
	"github.com/lbriand/otpgate/internal/pkg/instrument"
	"github.com/lbriand/otpgate/internal/pkg/jwt"
	"github.com/lbriand/otpgate/internal/pkg/messaging"
	"github.com/lbriand/otpgate/internal/pkg/otpcode"
	"github.com/lbriand/otpgate/internal/pkg/router"
	"github.com/lbriand/otpgate/internal/pkg/sms"
	"github.com/lbriand/otpgate/internal/pkg/uid"
	"github.com/lbriand/otpgate/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	SMS         sms.Sender                 `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	policy := usecase.DefaultPolicy()

	store := db.NewDB(dep.DBConn, dep.UID, dep.Instrument)
	dir := directory.NewDirectory(dep.DBConn, dep.Instrument)
	gw := gateway.New(dep.SMS, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	limiter := ratelimit.New(store, policy.RateWindow, policy.RateCap, dep.Clock)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        store,
		RepoDirectory: dir,
		RepoGateway:   gw,
		RepoMessaging: repoMsg,
		Limiter:       limiter,
		Idempotency:   dep.Idempotency,
		Codes:         otpcode.NewNumeric(policy.CodeLength),
		Policy:        policy,
		Validator:     dep.Validator,
		HMAC:          dep.HMAC,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	if dep.Ctx != nil {
		startCleanupSweeper(dep.Ctx, dep.Config, dep.Goroutine, uc)
	}

	return nil
}

// startCleanupSweeper periodically removes used and expired records so the
// table does not grow unbounded between administrative cleanups.
func startCleanupSweeper(ctx context.Context, cfg config.Config, g *goroutine.Manager, uc *usecase.Usecase) {
	interval := cfg.GetMinute("modules.otp.cleanup_interval_minutes")
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	g.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := uc.Cleanup(ctx); err != nil {
					slog.ErrorContext(ctx, "periodic verification code cleanup failed", "error", err)
				}
			}
		}
	})
}
