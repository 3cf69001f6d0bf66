// Package directory resolves a user ID to a delivery address. The user table
// is owned by an external identity system; this adapter only reads from it.
package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lbriand/otpgate/internal/pkg/goerror"
	"github.com/lbriand/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Directory struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDirectory(conn *pgxpool.Pool, ins instrument.Instrumentation) *Directory {
	return &Directory{conn: conn, ins: ins}
}

const queryUserPhoneNumber = `
SELECT COALESCE(phone_number, '') FROM users WHERE id = $1 AND deleted_at IS NULL
`

func (s *Directory) PhoneNumber(ctx context.Context, userID int64) (_ string, err error) {
	ctx, span := s.ins.Tracer("otp.outbound.directory").Start(ctx, "PhoneNumber")
	defer func() { s.endSpan(span, err) }()

	var number string
	err = s.conn.QueryRow(ctx, queryUserPhoneNumber, userID).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", goerror.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	return number, nil
}

func (s *Directory) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
