package app

import (
	"log/slog"
	"os"

	"github.com/lbriand/otpgate/internal/otp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.otp.enabled") {
		err := otp.New(otp.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Goroutine:   a.goroutine,
			Router:      a.router,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			SMS:         a.sms,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			HMAC:        a.hmac,
			Clock:       a.clock,
			Validator:   a.validator,
			JWT:         a.jwt,
		})
		if err != nil {
			slog.Error("failed to init otp module", "error", err)
			os.Exit(1)
		}
	}
}
