package event

const OTPIssuedDestination string = "otp_issued"

type OTPIssuedMessage struct {
	RecordID  int64  `json:"record_id"`
	UserID    int64  `json:"user_id"`
	Delivered bool   `json:"delivered"`
	ExpiresAt string `json:"expires_at"`
}
