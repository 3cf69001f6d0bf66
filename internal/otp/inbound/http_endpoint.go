package inbound

import (
	"github.com/lbriand/otpgate/internal/otp/usecase"
	"github.com/lbriand/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the verification code workflows.
type HTTPEndpoint struct {
	uc uc
}

// Request issues a new verification code for a user.
// @Summary Request verification code
// @Description Generates a code, persists it and delivers it by SMS. Delivery failure still yields a created record with delivered=false.
// @Tags OTP
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplicates client retries"
// @Param request body RequestOTPRequest true "Request payload"
// @Success 200 {object} router.successResponse{data=RequestOTPResponse} "Issuance result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "No phone number on file"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/request [post]
func (h *HTTPEndpoint) Request(r *router.Request) (any, error) {
	var req RequestOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		UserID:         req.UserID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return nil, err
	}

	return RequestOTPResponse{
		RecordID:  resp.RecordID,
		Delivered: resp.Delivered,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// Verify consumes a verification code.
// @Summary Verify code
// @Description Checks the submitted code and consumes it on success. All failure modes yield verified=false.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyOTPResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		UserID: req.UserID,
		Code:   req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{
		Verified:    resp.Verified,
		AccessToken: resp.AccessToken,
	}, nil
}

// Availability reports whether the user may request another code.
// @Summary Check issuance availability
// @Description Read-only view of the issuance rate limit for one user.
// @Tags OTP
// @Produce json
// @Param uid path int true "User ID"
// @Success 200 {object} router.successResponse{data=AvailabilityResponse} "Availability result"
// @Failure 400 {object} router.errorResponse "Invalid user ID"
// @Router /api/v1/otp/availability/{uid} [get]
func (h *HTTPEndpoint) Availability(r *router.Request) (any, error) {
	userID, err := r.GetParamInt64("uid")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.CanRequestAgain(r.Context(), usecase.CanRequestAgainInput{UserID: userID})
	if err != nil {
		return nil, err
	}

	return AvailabilityResponse{
		Allowed:    resp.Allowed,
		WindowMins: resp.WindowMins,
	}, nil
}

// Cleanup removes used and expired records.
// @Summary Sweep verification codes
// @Description Deletes records that are used or past their TTL. Requires authentication.
// @Tags OTP
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=CleanupResponse} "Cleanup result"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/cleanup [post]
func (h *HTTPEndpoint) Cleanup(r *router.Request) (any, error) {
	resp, err := h.uc.Cleanup(r.Context())
	if err != nil {
		return nil, err
	}

	return CleanupResponse{Removed: resp.Removed}, nil
}

// GatewayHealth probes the SMS gateway.
// @Summary SMS gateway health
// @Description Reports whether the delivery gateway is reachable.
// @Tags OTP
// @Produce json
// @Success 200 {object} router.successResponse{data=GatewayHealthResponse} "Gateway status"
// @Router /api/v1/otp/gateway/health [get]
func (h *HTTPEndpoint) GatewayHealth(r *router.Request) (any, error) {
	resp, err := h.uc.GatewayHealth(r.Context())
	if err != nil {
		return nil, err
	}

	return GatewayHealthResponse{Healthy: resp.Healthy}, nil
}
