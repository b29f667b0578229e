package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shrujansacharya/Team-Connect-App/ledger"
	"github.com/shrujansacharya/Team-Connect-App/period"
)

// MemberCounter reports the size of the active member set.
type MemberCounter interface {
	CountApproved(ctx context.Context) (int, error)
}

// Analytics is the read-only per-period summary of the ledger against the
// member set. Amounts are in minor currency units.
type Analytics struct {
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	MonthName    string `json:"month_name"`
	TotalMembers int    `json:"total_members"`
	PaidCount    int    `json:"paid_count"`
	UnpaidCount  int    `json:"unpaid_count"`
	TotalMonth   int64  `json:"total_collected_this_month"`
	TotalYear    int64  `json:"total_collected_this_year"`
}

// Aggregator summarizes ledger state. No caching: every call reflects the
// store at call time.
type Aggregator struct {
	ledger  ledger.Store
	members MemberCounter
}

func NewAggregator(l ledger.Store, m MemberCounter) *Aggregator {
	return &Aggregator{ledger: l, members: m}
}

func (a *Aggregator) Summarize(ctx context.Context, p period.Period) (*Analytics, error) {
	total, err := a.members.CountApproved(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Failed count members.")
	}
	sum, err := a.ledger.Summarize(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "Failed summarize ledger.")
	}
	return &Analytics{
		Month:        int(p.Month),
		Year:         p.Year,
		MonthName:    p.MonthName(),
		TotalMembers: total,
		PaidCount:    sum.PaidCount,
		UnpaidCount:  total - sum.PaidCount,
		TotalMonth:   sum.TotalMonth,
		TotalYear:    sum.TotalYear,
	}, nil
}
