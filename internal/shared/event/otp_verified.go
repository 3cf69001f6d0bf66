package event

const OTPVerifiedDestination string = "otp_verified"

type OTPVerifiedMessage struct {
	RecordID   int64  `json:"record_id"`
	UserID     int64  `json:"user_id"`
	VerifiedAt string `json:"verified_at"`
}
