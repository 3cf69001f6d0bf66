package db

import (
	"context"
	"time"

	"github.com/lbriand/otpgate/internal/otp/entity"
)

const querySaveOTP = `
INSERT INTO otp_codes (id, user_id, code_digest, created_at, expires_at, used)
VALUES ($1, $2, $3, $4, $5, false)
`

func (s *DB) Save(ctx context.Context, in entity.NewOTP) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "Save")
	defer func() { s.endSpan(span, err) }()

	id := s.uid.Generate()
	_, err = s.conn.Exec(ctx, querySaveOTP, id, in.UserID, in.CodeDigest, in.CreatedAt, in.ExpiresAt)
	if err != nil {
		return 0, s.mapError(err)
	}

	return id, nil
}

const queryFindValidOTP = `
SELECT id, user_id, code_digest, created_at, expires_at, used, used_at
FROM otp_codes
WHERE user_id = $1 AND code_digest = $2 AND used = false AND expires_at > $3
ORDER BY created_at DESC
LIMIT 1
`

// FindValid evaluates the validity predicate inside the query, at the instant
// the caller supplies, so a stale in-process view can never resurrect an
// expired or consumed code.
func (s *DB) FindValid(ctx context.Context, userID int64, codeDigest string, now time.Time) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "FindValid")
	defer func() { s.endSpan(span, err) }()

	var rec entity.OTP
	err = s.conn.QueryRow(ctx, queryFindValidOTP, userID, codeDigest, now).
		Scan(&rec.ID, &rec.UserID, &rec.CodeDigest, &rec.CreatedAt, &rec.ExpiresAt, &rec.Used, &rec.UsedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &rec, nil
}

const queryMarkOTPUsed = `
UPDATE otp_codes
SET used = true, used_at = $2
WHERE id = $1 AND used = false AND expires_at > $2
`

// MarkUsed flips the record to used under the same validity predicate it was
// found with. The conditional update is the consumption point: of N
// concurrent verifiers exactly one sees an affected row.
func (s *DB) MarkUsed(ctx context.Context, id int64, now time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkUsed")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryMarkOTPUsed, id, now)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

const queryCountRecentOTP = `
SELECT COUNT(*) FROM otp_codes WHERE user_id = $1 AND created_at > $2
`

func (s *DB) CountRecent(ctx context.Context, userID int64, since time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountRecent")
	defer func() { s.endSpan(span, err) }()

	var n int64
	if err = s.conn.QueryRow(ctx, queryCountRecentOTP, userID, since).Scan(&n); err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}

const queryDeleteExpiredOTP = `
DELETE FROM otp_codes WHERE used = true OR expires_at <= $1
`

func (s *DB) DeleteExpired(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpired")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryDeleteExpiredOTP, now)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
