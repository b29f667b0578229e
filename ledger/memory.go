package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shrujansacharya/Team-Connect-App/period"
)

// Memory is an in-process Store with the same conditional-insert contract
// as Postgres. Used in tests and local development without a database.
type Memory struct {
	mu   sync.Mutex
	recs map[memKey]*PaymentRecord
}

type memKey struct {
	memberID string
	year     int32
	month    int32
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{recs: make(map[memKey]*PaymentRecord)}
}

func keyOf(memberID string, year, month int32) memKey {
	return memKey{memberID: memberID, year: year, month: month}
}

func (s *Memory) Get(ctx context.Context, memberID string, p period.Period) (*PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[keyOf(memberID, int32(p.Year), int32(p.Month))]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *Memory) InsertIfAbsent(ctx context.Context, rec *PaymentRecord) (*PaymentRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(rec.MemberID, rec.Year, rec.Month)
	if existing, ok := s.recs[k]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *rec
	if cp.RecordID == "" {
		cp.RecordID = uuid.New().String()
	}
	s.recs[k] = &cp
	out := cp
	return &out, true, nil
}

func (s *Memory) ListForPeriod(ctx context.Context, p period.Period) ([]*PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*PaymentRecord
	for k, rec := range s.recs {
		if k.year == int32(p.Year) && k.month == int32(p.Month) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Memory) Summarize(ctx context.Context, p period.Period) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum Summary
	for k, rec := range s.recs {
		if k.year != int32(p.Year) {
			continue
		}
		sum.TotalYear += rec.Amount
		if k.month == int32(p.Month) {
			sum.PaidCount++
			sum.TotalMonth += rec.Amount
		}
	}
	return &sum, nil
}
