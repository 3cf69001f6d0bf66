package inbound

import "time"

type RequestOTPRequest struct {
	UserID int64 `json:"user_id,string"`
}

type RequestOTPResponse struct {
	RecordID  int64     `json:"record_id,string"`
	Delivered bool      `json:"delivered"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r RequestOTPResponse) Message() string {
	if !r.Delivered {
		return "A verification code was created but could not be delivered."
	}
	return "A verification code has been sent."
}

type VerifyOTPRequest struct {
	UserID int64  `json:"user_id,string"`
	Code   string `json:"code"`
}

type VerifyOTPResponse struct {
	Verified    bool   `json:"verified"`
	AccessToken string `json:"access_token,omitempty"`
}

func (r VerifyOTPResponse) Message() string {
	if !r.Verified {
		return "Verification failed."
	}
	return "Verification successful."
}

type AvailabilityResponse struct {
	Allowed    bool `json:"allowed"`
	WindowMins int  `json:"window_minutes"`
}

type CleanupResponse struct {
	Removed int64 `json:"removed"`
}

func (CleanupResponse) Message() string {
	return "Cleanup completed."
}

type GatewayHealthResponse struct {
	Healthy bool `json:"healthy"`
}
