package gateway

import (
	"context"

	"github.com/lbriand/otpgate/internal/pkg/instrument"
	"github.com/lbriand/otpgate/internal/pkg/sms"
	"go.opentelemetry.io/otel/codes"
)

type SMS struct {
	client sms.Sender
	ins    instrument.Instrumentation
}

func New(client sms.Sender, ins instrument.Instrumentation) *SMS {
	return &SMS{client: client, ins: ins}
}

func (g *SMS) Send(ctx context.Context, to, message string) error {
	ctx, span := g.ins.Tracer("otp.outbound.gateway").Start(ctx, "Send")
	defer span.End()

	if err := g.client.Send(ctx, sms.Message{To: to, Body: message}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (g *SMS) Healthy(ctx context.Context) bool {
	ctx, span := g.ins.Tracer("otp.outbound.gateway").Start(ctx, "Healthy")
	defer span.End()

	return g.client.Healthy(ctx)
}
