// Package memory holds an in-memory store implementation. It backs unit
// tests and local development where a database is not available; the
// conditional consumption in MarkUsed gives the same at-most-once guarantee
// the SQL store provides.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lbriand/otpgate/internal/otp/entity"
	"github.com/lbriand/otpgate/internal/pkg/goerror"
	"github.com/lbriand/otpgate/internal/pkg/uid"
)

type Store struct {
	uid uid.NumberID

	mu      sync.Mutex
	records map[int64]*entity.OTP
}

func NewStore(uid uid.NumberID) *Store {
	return &Store{
		uid:     uid,
		records: map[int64]*entity.OTP{},
	}
}

func (s *Store) Save(_ context.Context, in entity.NewOTP) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.uid.Generate()
	s.records[id] = &entity.OTP{
		ID:         id,
		UserID:     in.UserID,
		CodeDigest: in.CodeDigest,
		CreatedAt:  in.CreatedAt,
		ExpiresAt:  in.ExpiresAt,
	}

	return id, nil
}

func (s *Store) FindValid(_ context.Context, userID int64, codeDigest string, now time.Time) (*entity.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *entity.OTP
	for _, rec := range s.records {
		if rec.UserID != userID || rec.CodeDigest != codeDigest || !rec.Verifiable(now) {
			continue
		}
		if found == nil || rec.CreatedAt.After(found.CreatedAt) {
			found = rec
		}
	}
	if found == nil {
		return nil, goerror.ErrNotFound
	}

	cp := *found
	return &cp, nil
}

func (s *Store) MarkUsed(_ context.Context, id int64, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || !rec.Verifiable(now) {
		return false, nil
	}

	rec.Used = true
	at := now
	rec.UsedAt = &at

	return true, nil
}

func (s *Store) CountRecent(_ context.Context, userID int64, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, rec := range s.records {
		if rec.UserID == userID && rec.CreatedAt.After(since) {
			n++
		}
	}

	return n, nil
}

func (s *Store) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.records {
		if rec.Used || !now.Before(rec.ExpiresAt) {
			delete(s.records, id)
			n++
		}
	}

	return n, nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
