// Package ledger is the durable record of verified contributions.
// One record per member per period; records are created by a single
// conditional insert and never updated or deleted here.
package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shrujansacharya/Team-Connect-App/period"
)

var ErrNotFound = errors.New("payment record not found")

//go:generate reform

// PaymentRecord is one verified monthly contribution.
//reform:portal.monthly_payments
type PaymentRecord struct {
	RecordID   string    `reform:"record_id,pk" json:"id"`
	MemberID   string    `reform:"member_id" json:"member_id"`
	Year       int32     `reform:"year" json:"year"`
	Month      int32     `reform:"month" json:"month"`
	Amount     int64     `reform:"amount" json:"amount"`
	PaymentID  string    `reform:"payment_id" json:"payment_id"`
	Method     string    `reform:"method" json:"method"`
	VerifiedAt time.Time `reform:"verified_at" json:"verified_at"`
}

func (r *PaymentRecord) Period() period.Period {
	return period.Period{Year: int(r.Year), Month: time.Month(r.Month)}
}

// Summary is the per-period ledger aggregate. Amounts are in minor
// currency units.
type Summary struct {
	PaidCount  int   `json:"paid_count"`
	TotalMonth int64 `json:"total_collected_this_month"`
	TotalYear  int64 `json:"total_collected_this_year"`
}

// Store persists payment records. InsertIfAbsent is the sole write and the
// sole serialization point: it must be atomic with respect to the
// uniqueness of (member, period) and return the pre-existing record when
// the insert loses.
type Store interface {
	// Get returns the record for the member and period, or ErrNotFound.
	Get(ctx context.Context, memberID string, p period.Period) (*PaymentRecord, error)

	// InsertIfAbsent inserts rec unless a record for (rec.MemberID,
	// rec.Period()) already exists. It returns the record that is now in
	// the ledger and whether this call inserted it.
	InsertIfAbsent(ctx context.Context, rec *PaymentRecord) (*PaymentRecord, bool, error)

	// ListForPeriod returns all records for the period.
	ListForPeriod(ctx context.Context, p period.Period) ([]*PaymentRecord, error)

	// Summarize aggregates the period (and its year) at call time.
	Summarize(ctx context.Context, p period.Period) (*Summary, error)
}
