package inbound

import (
	"context"

	"github.com/lbriand/otpgate/internal/otp/usecase"
	"github.com/lbriand/otpgate/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	CanRequestAgain(ctx context.Context, in usecase.CanRequestAgainInput) (*usecase.CanRequestAgainOutput, error)
	Cleanup(ctx context.Context) (*usecase.CleanupOutput, error)
	GatewayHealth(ctx context.Context) (*usecase.GatewayHealthOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Verification flow
	r.POST("/api/v1/otp/request", end.Request)
	r.POST("/api/v1/otp/verify", end.Verify)
	r.GET("/api/v1/otp/availability/:uid", end.Availability)

	// Operations
	r.GET("/api/v1/otp/gateway/health", end.GatewayHealth)
	r.POST("/api/v1/otp/cleanup", end.Cleanup) // need authenticated
}
