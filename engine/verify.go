package engine

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shrujansacharya/Team-Connect-App/ledger"
)

var (
	// ErrProofMismatch: the proof references a different order.
	ErrProofMismatch = errors.New("proof does not match order")

	// ErrSignatureInvalid: the proof signature failed verification.
	// Rejected outright, never partially trusted.
	ErrSignatureInvalid = errors.New("invalid payment signature")
)

const defaultMethod = "UPI"

// Verifier validates gateway success proofs against their orders and
// commits exactly zero or one ledger write per call.
type Verifier struct {
	secret string
	store  ledger.Store
	now    func() time.Time
	l      *zap.Logger
}

func NewVerifier(keySecret string, store ledger.Store) *Verifier {
	return &Verifier{
		secret: keySecret,
		store:  store,
		now:    time.Now,
		l:      zap.L().Named("verifier"),
	}
}

// Signature computes the gateway signature for an order/payment pair:
// HMAC-SHA256 over "<order_id>|<payment_id>" keyed with the gateway
// account secret.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks proof against order and, only on success, records the
// contribution. Duplicate callbacks and client retries are not errors:
// the first successful verification wins and later calls get its record.
func (v *Verifier) Verify(ctx context.Context, order *PaymentOrder, proof *GatewayProof) (*ledger.PaymentRecord, error) {
	if proof.OrderID != order.OrderID {
		v.l.Warn("Proof references another order.",
			zap.String("order_id", order.OrderID),
			zap.String("proof_order_id", proof.OrderID),
		)
		verifyOutcomes.WithLabelValues("proof_mismatch").Inc()
		return nil, ErrProofMismatch
	}

	expected := Signature(v.secret, order.OrderID, proof.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		v.l.Warn("Payment signature verification failed.",
			zap.String("order_id", order.OrderID),
			zap.String("payment_id", proof.PaymentID),
			zap.String("member_id", order.MemberID),
		)
		verifyOutcomes.WithLabelValues("signature_invalid").Inc()
		return nil, ErrSignatureInvalid
	}

	return v.Commit(ctx, order, proof.PaymentID)
}

// Commit performs the idempotent ledger write for an order whose payment
// authenticity has already been established (a verified proof, or a
// gateway webhook whose body signature checked out).
func (v *Verifier) Commit(ctx context.Context, order *PaymentOrder, paymentID string) (*ledger.PaymentRecord, error) {
	rec := &ledger.PaymentRecord{
		MemberID:   order.MemberID,
		Year:       order.Year,
		Month:      order.Month,
		Amount:     order.Amount,
		PaymentID:  paymentID,
		Method:     defaultMethod,
		VerifiedAt: v.now(),
	}
	got, inserted, err := v.store.InsertIfAbsent(ctx, rec)
	if err != nil {
		verifyOutcomes.WithLabelValues("store_error").Inc()
		return nil, errors.Wrap(err, "Failed record verified payment.")
	}
	if inserted {
		v.l.Info("Contribution recorded.",
			zap.String("member_id", order.MemberID),
			zap.String("period", order.Period().String()),
			zap.String("payment_id", paymentID),
			zap.Int64("amount", order.Amount),
		)
		verifyOutcomes.WithLabelValues("verified").Inc()
	} else {
		verifyOutcomes.WithLabelValues("duplicate").Inc()
	}
	return got, nil
}
