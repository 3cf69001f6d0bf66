package entity

type Status int16

const (
	// StatusActive mean the record is unused and not yet expired.
	StatusActive Status = 1

	// StatusVerified mean the record was consumed by a successful verification.
	StatusVerified Status = 2

	// StatusExpired mean the record reached its TTL without being used.
	StatusExpired Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusVerified:
		return "Verified"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}
