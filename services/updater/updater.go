// Package updater pushes ledger changes to portal clients over NATS so
// open sessions can refresh without polling.
package updater

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/shrujansacharya/Team-Connect-App/ledger"
)

type PaymentUpdate struct {
	RecordID  string `json:"record_id"`
	MemberID  string `json:"member_id"`
	Year      int32  `json:"year"`
	Month     int32  `json:"month"`
	Amount    int64  `json:"amount"`
	PaymentID string `json:"payment_id"`
}

// Publisher is nil-safe on its connection: with NATS unconfigured every
// publish is a no-op, the payment flow itself never depends on it.
type Publisher struct {
	nc *nats.EncodedConn
	l  *zap.Logger
}

func NewPublisher(nc *nats.EncodedConn) *Publisher {
	return &Publisher{
		nc: nc,
		l:  zap.L().Named("updater"),
	}
}

func (p *Publisher) PaymentVerified(rec *ledger.PaymentRecord) {
	if p == nil || p.nc == nil {
		return
	}
	subject := fmt.Sprintf("portal.member.%s.payments", rec.MemberID)
	err := p.nc.Publish(subject, &PaymentUpdate{
		RecordID:  rec.RecordID,
		MemberID:  rec.MemberID,
		Year:      rec.Year,
		Month:     rec.Month,
		Amount:    rec.Amount,
		PaymentID: rec.PaymentID,
	})
	if err != nil {
		p.l.Warn("Failed publish payment update.",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
