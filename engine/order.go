// Package engine implements the contribution payment core: the checkout
// session state machine, proof verification and the idempotent ledger
// commit, and the per-period analytics aggregator.
package engine

import (
	"time"

	"github.com/shrujansacharya/Team-Connect-App/period"
)

//go:generate reform

// PaymentOrder is a gateway-issued intent to collect one monthly
// contribution. It is created once, owned by the gateway until a terminal
// checkout outcome, and never mutated locally; verification only reads it.
//reform:portal.payment_orders
type PaymentOrder struct {
	OrderID   string    `reform:"order_id,pk" json:"order_id"`
	MemberID  string    `reform:"member_id" json:"member_id"`
	Year      int32     `reform:"year" json:"year"`
	Month     int32     `reform:"month" json:"month"`
	Amount    int64     `reform:"amount" json:"amount"`
	Currency  string    `reform:"currency" json:"currency"`
	CreatedAt time.Time `reform:"created_at" json:"created_at"`
}

func (o *PaymentOrder) BeforeInsert() error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	return nil
}

func (o *PaymentOrder) Period() period.Period {
	return period.Period{Year: int(o.Year), Month: time.Month(o.Month)}
}

// GatewayProof is the gateway's signed assertion that an order was paid.
// Transient: verified once, then discarded. Never persisted.
type GatewayProof struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}
