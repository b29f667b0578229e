// Package savings is the monthly contribution service: payment status,
// order creation, proof verification and admin analytics.
package savings

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shrujansacharya/Team-Connect-App/engine"
	"github.com/shrujansacharya/Team-Connect-App/gateway"
	"github.com/shrujansacharya/Team-Connect-App/gateway/razorpay"
	"github.com/shrujansacharya/Team-Connect-App/ledger"
	"github.com/shrujansacharya/Team-Connect-App/period"
	"github.com/shrujansacharya/Team-Connect-App/services/auth"
	"github.com/shrujansacharya/Team-Connect-App/services/members"
	"github.com/shrujansacharya/Team-Connect-App/services/updater"
)

// OrderCreator registers payment orders with the gateway.
type OrderCreator interface {
	Configured() bool
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.Order, error)
}

// OrderStore keeps the orders pending verification.
type OrderStore interface {
	NewOrder(order *engine.PaymentOrder) error
	GetByOrderID(orderID string) (*engine.PaymentOrder, error)
}

const currency = "INR"

type Service struct {
	resolver *period.Resolver
	ledger   ledger.Store
	orders   OrderStore
	provider OrderCreator
	verifier *engine.Verifier
	agg      *engine.Aggregator
	users    members.UserStore
	updates  *updater.Publisher
	l        *zap.Logger
}

func NewService(
	resolver *period.Resolver,
	ledgerStore ledger.Store,
	orders OrderStore,
	provider OrderCreator,
	verifier *engine.Verifier,
	agg *engine.Aggregator,
	users members.UserStore,
	updates *updater.Publisher,
) *Service {
	return &Service{
		resolver: resolver,
		ledger:   ledgerStore,
		orders:   orders,
		provider: provider,
		verifier: verifier,
		agg:      agg,
		users:    users,
		updates:  updates,
		l:        zap.L().Named("savings"),
	}
}

// Routes mounts the contribution endpoints on the API group.
func (s *Service) Routes(g *echo.Group, guard *auth.Guard) {
	member := []echo.MiddlewareFunc{guard.Authenticate, guard.RequireApproved}
	admin := []echo.MiddlewareFunc{guard.Authenticate, guard.RequireAdmin}

	g.GET("/savings/current", s.currentHandler, member...)
	g.POST("/savings/create-order", s.createOrderHandler, member...)
	g.POST("/savings/verify-payment", s.verifyPaymentHandler, member...)
	g.GET("/savings/analytics", s.analyticsHandler, admin...)
	g.GET("/savings/members-status", s.membersStatusHandler, admin...)
}

type currentResponse struct {
	Month     int                   `json:"month"`
	Year      int                   `json:"year"`
	MonthName string                `json:"month_name"`
	HasPaid   bool                  `json:"has_paid"`
	Payment   *ledger.PaymentRecord `json:"payment"`
}

func (s *Service) currentHandler(c echo.Context) error {
	user := auth.CurrentUser(c)
	p := s.resolver.Current()

	rec, err := s.ledger.Get(c.Request().Context(), user.UserID, p)
	if err != nil && err != ledger.ErrNotFound {
		s.l.Error("Failed get payment status.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, currentResponse{
		Month:     int(p.Month),
		Year:      p.Year,
		MonthName: p.MonthName(),
		HasPaid:   rec != nil,
		Payment:   rec,
	})
}

type createOrderRequest struct {
	Amount int64 `json:"amount"`
}

type createOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (s *Service) createOrderHandler(c echo.Context) error {
	user := auth.CurrentUser(c)
	p := s.resolver.Current()
	ctx := c.Request().Context()

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Amount must be positive")
	}

	// UX guard only; the ledger's conditional insert stays the authority
	if _, err := s.ledger.Get(ctx, user.UserID, p); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Contribution already recorded for this month")
	} else if err != ledger.ErrNotFound {
		s.l.Error("Failed check payment status.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	// rupees in, minor units (paise) everywhere after this line
	amount := req.Amount * 100
	receipt := fmt.Sprintf("%s-%s", user.UserID, p)
	gw, err := s.provider.CreateOrder(ctx, amount, currency, receipt)
	if err != nil {
		switch err {
		case razorpay.ErrConfigurationMissing:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Payments are currently unavailable")
		case razorpay.ErrInvalidAmount:
			return echo.NewHTTPError(http.StatusBadRequest, "Amount must be positive")
		case razorpay.ErrGatewayUnreachable:
			return echo.NewHTTPError(http.StatusBadGateway, "Payment gateway error")
		}
		s.l.Error("Failed create gateway order.", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "Payment gateway error")
	}

	order := &engine.PaymentOrder{
		OrderID:  gw.ID,
		MemberID: user.UserID,
		Year:     int32(p.Year),
		Month:    int32(p.Month),
		Amount:   gw.Amount,
		Currency: gw.Currency,
	}
	if err := s.orders.NewOrder(order); err != nil {
		s.l.Error("Failed persist payment order.",
			zap.String("order_id", gw.ID),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	s.l.Info("Payment order created.",
		zap.String("order_id", gw.ID),
		zap.String("member_id", user.UserID),
		zap.Int64("amount", gw.Amount),
	)
	return c.JSON(http.StatusOK, createOrderResponse{
		OrderID:  gw.ID,
		Amount:   gw.Amount,
		Currency: gw.Currency,
	})
}

type verifyResponse struct {
	Status  string                `json:"status"`
	Payment *ledger.PaymentRecord `json:"payment"`
}

func (s *Service) verifyPaymentHandler(c echo.Context) error {
	user := auth.CurrentUser(c)
	ctx := c.Request().Context()

	var proof engine.GatewayProof
	if err := c.Bind(&proof); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	order, err := s.orders.GetByOrderID(proof.OrderID)
	if err != nil {
		if errors.Cause(err) == gateway.ErrOrderNotFound {
			s.l.Warn("Verification for unknown order.",
				zap.String("order_id", proof.OrderID),
			)
			return echo.NewHTTPError(http.StatusBadRequest, "Payment verification failed")
		}
		s.l.Error("Failed load payment order.",
			zap.String("order_id", proof.OrderID),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if order.MemberID != user.UserID {
		s.l.Warn("Verification for another member's order.",
			zap.String("order_id", order.OrderID),
			zap.String("order_member_id", order.MemberID),
			zap.String("caller_id", user.UserID),
		)
		return echo.NewHTTPError(http.StatusForbidden, "Payment verification failed")
	}

	rec, err := s.verifier.Verify(ctx, order, &proof)
	if err != nil {
		switch err {
		case engine.ErrProofMismatch, engine.ErrSignatureInvalid:
			return echo.NewHTTPError(http.StatusBadRequest, "Payment verification failed")
		}
		s.l.Error("Failed verify payment.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	s.updates.PaymentVerified(rec)
	return c.JSON(http.StatusOK, verifyResponse{Status: "success", Payment: rec})
}

// RecordCaptured is the webhook path: authenticity was established by the
// webhook body signature, so only the idempotent commit remains.
func (s *Service) RecordCaptured(c echo.Context, orderID, paymentID string) error {
	order, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return err
	}
	rec, err := s.verifier.Commit(c.Request().Context(), order, paymentID)
	if err != nil {
		return err
	}
	s.updates.PaymentVerified(rec)
	return nil
}

func (s *Service) analyticsHandler(c echo.Context) error {
	out, err := s.agg.Summarize(c.Request().Context(), s.resolver.Current())
	if err != nil {
		s.l.Error("Failed summarize.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, out)
}

type memberStatus struct {
	User    *members.User         `json:"user"`
	HasPaid bool                  `json:"has_paid"`
	Payment *ledger.PaymentRecord `json:"payment"`
}

func (s *Service) membersStatusHandler(c echo.Context) error {
	ctx := c.Request().Context()
	p := s.resolver.Current()

	users, err := s.users.ListApproved(ctx)
	if err != nil {
		s.l.Error("Failed list members.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	recs, err := s.ledger.ListForPeriod(ctx, p)
	if err != nil {
		s.l.Error("Failed list payments.", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	byMember := make(map[string]*ledger.PaymentRecord, len(recs))
	for _, rec := range recs {
		byMember[rec.MemberID] = rec
	}

	out := make([]memberStatus, 0, len(users))
	for _, u := range users {
		rec := byMember[u.UserID]
		out = append(out, memberStatus{User: u, HasPaid: rec != nil, Payment: rec})
	}
	return c.JSON(http.StatusOK, out)
}
