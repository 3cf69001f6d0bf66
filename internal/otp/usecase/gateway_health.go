package usecase

import "context"

type GatewayHealthOutput struct {
	Healthy bool
}

// GatewayHealth probes the SMS gateway so operators can tell a delivery
// outage apart from an application fault.
func (s *Usecase) GatewayHealth(ctx context.Context) (*GatewayHealthOutput, error) {
	ctx, span := s.startSpan(ctx, "GatewayHealth")
	defer span.End()

	return &GatewayHealthOutput{Healthy: s.repoGateway.Healthy(ctx)}, nil
}
