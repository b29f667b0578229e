package ledger

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/reform.v1"

	"github.com/shrujansacharya/Team-Connect-App/period"
)

// Postgres keeps payment records in portal.monthly_payments. The unique
// index on (member_id, year, month) makes the conditional insert atomic;
// two racing inserts resolve inside the database, not here.
type Postgres struct {
	db *reform.DB
	l  *zap.Logger
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *reform.DB) *Postgres {
	return &Postgres{
		db: db,
		l:  zap.L().Named("ledger"),
	}
}

func (s *Postgres) Get(ctx context.Context, memberID string, p period.Period) (*PaymentRecord, error) {
	var rec PaymentRecord
	err := s.db.SelectOneTo(&rec, "WHERE member_id = $1 AND year = $2 AND month = $3", memberID, p.Year, int(p.Month))
	if err != nil {
		if err == reform.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "Failed get payment record.")
	}
	return &rec, nil
}

func (s *Postgres) InsertIfAbsent(ctx context.Context, rec *PaymentRecord) (*PaymentRecord, bool, error) {
	if rec.RecordID == "" {
		rec.RecordID = uuid.New().String()
	}
	res, err := s.db.Exec(
		`INSERT INTO portal.monthly_payments (record_id, member_id, year, month, amount, payment_id, method, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (member_id, year, month) DO NOTHING`,
		rec.RecordID, rec.MemberID, rec.Year, rec.Month, rec.Amount, rec.PaymentID, rec.Method, rec.VerifiedAt,
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "Failed insert payment record.")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, errors.Wrap(err, "Failed get affected rows.")
	}
	if n == 1 {
		return rec, true, nil
	}
	// Lost the race or a duplicate submission: the first record wins.
	existing, err := s.Get(ctx, rec.MemberID, rec.Period())
	if err != nil {
		return nil, false, errors.Wrap(err, "Failed reload existing payment record after conflict.")
	}
	s.l.Info("Duplicate payment verification resolved to existing record.",
		zap.String("member_id", rec.MemberID),
		zap.String("period", rec.Period().String()),
		zap.String("record_id", existing.RecordID),
	)
	return existing, false, nil
}

func (s *Postgres) ListForPeriod(ctx context.Context, p period.Period) ([]*PaymentRecord, error) {
	list, err := s.db.SelectAllFrom(PaymentRecordTable, "WHERE year = $1 AND month = $2", p.Year, int(p.Month))
	if err != nil {
		return nil, errors.Wrap(err, "Failed list payment records.")
	}
	recs := make([]*PaymentRecord, 0, len(list))
	for _, v := range list {
		recs = append(recs, v.(*PaymentRecord))
	}
	return recs, nil
}

func (s *Postgres) Summarize(ctx context.Context, p period.Period) (*Summary, error) {
	var sum Summary
	var month, year sql.NullInt64
	err := s.db.QueryRow(
		`SELECT
			COUNT(*) FILTER (WHERE month = $2),
			SUM(amount) FILTER (WHERE month = $2),
			SUM(amount)
		FROM portal.monthly_payments WHERE year = $1`,
		p.Year, int(p.Month),
	).Scan(&sum.PaidCount, &month, &year)
	if err != nil {
		return nil, errors.Wrap(err, "Failed summarize payments.")
	}
	sum.TotalMonth = month.Int64
	sum.TotalYear = year.Int64
	return &sum, nil
}
