package entity

import "time"

// OTP is a persisted one-time verification code record. The plaintext code is
// never stored; only its keyed digest is kept.
type OTP struct {
	ID         int64
	UserID     int64
	CodeDigest string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Used       bool
	UsedAt     *time.Time
}

// Verifiable reports whether the record can still be consumed at the given
// instant: not yet used and not expired.
func (o OTP) Verifiable(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}

// Status derives the lifecycle status from the record fields.
func (o OTP) Status(now time.Time) Status {
	switch {
	case o.Used:
		return StatusVerified
	case !now.Before(o.ExpiresAt):
		return StatusExpired
	default:
		return StatusActive
	}
}

// NewOTP carries the fields needed to persist a fresh record. The store
// assigns the record ID on creation.
type NewOTP struct {
	UserID     int64
	CodeDigest string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
