package savings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrujansacharya/Team-Connect-App/engine"
	"github.com/shrujansacharya/Team-Connect-App/gateway"
	"github.com/shrujansacharya/Team-Connect-App/gateway/razorpay"
	"github.com/shrujansacharya/Team-Connect-App/ledger"
	"github.com/shrujansacharya/Team-Connect-App/period"
	"github.com/shrujansacharya/Team-Connect-App/services/auth"
	"github.com/shrujansacharya/Team-Connect-App/services/members"
	"github.com/shrujansacharya/Team-Connect-App/services/updater"
)

const testSecret = "test_key_secret"

type memOrders struct {
	mu   sync.Mutex
	m    map[string]*engine.PaymentOrder
	fail error
}

func newMemOrders() *memOrders {
	return &memOrders{m: make(map[string]*engine.PaymentOrder)}
}

func (s *memOrders) NewOrder(order *engine.PaymentOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[order.OrderID] = order
	return nil
}

func (s *memOrders) GetByOrderID(orderID string) (*engine.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	order, ok := s.m[orderID]
	if !ok {
		return nil, gateway.ErrOrderNotFound
	}
	return order, nil
}

type fakeProvider struct {
	fail    error
	created int
}

func (p *fakeProvider) Configured() bool { return true }

func (p *fakeProvider) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.Order, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	p.created++
	return &razorpay.Order{
		ID:       fmt.Sprintf("order_test%03d", p.created),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type fixture struct {
	e        *echo.Echo
	svc      *Service
	ledger   *ledger.Memory
	orders   *memOrders
	provider *fakeProvider
	users    *members.Memory
	tokens   *auth.Tokens

	memberID    string
	memberToken string
	adminToken  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := members.NewMemory()
	member := &members.User{
		FullName:   "Asha Pai",
		Email:      "asha@example.com",
		Phone:      "9000000001",
		IsApproved: true,
		Role:       members.RoleUser,
	}
	require.NoError(t, users.Create(context.Background(), member))

	tokens := auth.NewTokens("test-jwt-secret")
	memberToken, err := tokens.Issue(member.UserID, members.RoleUser)
	require.NoError(t, err)
	adminToken, err := tokens.Issue(auth.AdminID, members.RoleAdmin)
	require.NoError(t, err)

	mem := ledger.NewMemory()
	orders := newMemOrders()
	provider := &fakeProvider{}
	resolver := &period.Resolver{Now: func() time.Time {
		return time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)
	}}

	svc := NewService(
		resolver,
		mem,
		orders,
		provider,
		engine.NewVerifier(testSecret, mem),
		engine.NewAggregator(mem, users),
		users,
		updater.NewPublisher(nil),
	)

	e := echo.New()
	svc.Routes(e.Group("/api"), auth.NewGuard(tokens, users))

	return &fixture{
		e:           e,
		svc:         svc,
		ledger:      mem,
		orders:      orders,
		provider:    provider,
		users:       users,
		tokens:      tokens,
		memberID:    member.UserID,
		memberToken: memberToken,
		adminToken:  adminToken,
	}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestCurrentUnpaid(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/savings/current", f.memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res currentResponse
	decode(t, rec, &res)
	assert.Equal(t, 3, res.Month)
	assert.Equal(t, 2024, res.Year)
	assert.Equal(t, "March", res.MonthName)
	assert.False(t, res.HasPaid)
	assert.Nil(t, res.Payment)
}

func TestCurrentRequiresToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/savings/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentRejectsPendingMember(t *testing.T) {
	f := newFixture(t)

	pending := &members.User{
		FullName: "Pending",
		Email:    "pending@example.com",
		Phone:    "9000000002",
		Role:     members.RoleUser,
	}
	require.NoError(t, f.users.Create(context.Background(), pending))
	token, err := f.tokens.Issue(pending.UserID, members.RoleUser)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/savings/current", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateOrderAndVerify(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created createOrderResponse
	decode(t, rec, &created)
	require.NotEmpty(t, created.OrderID)
	assert.EqualValues(t, 50000, created.Amount) // rupees in, paise out
	assert.Equal(t, "INR", created.Currency)

	proof := engine.GatewayProof{
		OrderID:   created.OrderID,
		PaymentID: "pay_ok1",
		Signature: engine.Signature(testSecret, created.OrderID, "pay_ok1"),
	}
	rec = f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var verified verifyResponse
	decode(t, rec, &verified)
	assert.Equal(t, "success", verified.Status)
	require.NotNil(t, verified.Payment)
	assert.Equal(t, f.memberID, verified.Payment.MemberID)
	assert.EqualValues(t, 50000, verified.Payment.Amount)

	rec = f.do(t, http.MethodGet, "/api/savings/current", f.memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cur currentResponse
	decode(t, rec, &cur)
	assert.True(t, cur.HasPaid)
	require.NotNil(t, cur.Payment)
	assert.Equal(t, verified.Payment.RecordID, cur.Payment.RecordID)

	// once recorded, another order for the same month is refused
	rec = f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateOrderRejectsBadAmount(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": -10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderGatewayErrors(t *testing.T) {
	f := newFixture(t)

	f.provider.fail = razorpay.ErrGatewayUnreachable
	rec := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	f.provider.fail = razorpay.ErrConfigurationMissing
	rec = f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)
	var created createOrderResponse
	decode(t, rec, &created)

	proof := engine.GatewayProof{
		OrderID:   created.OrderID,
		PaymentID: "pay_bad",
		Signature: engine.Signature("wrong-secret", created.OrderID, "pay_bad"),
	}
	rec = f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/savings/current", f.memberToken, nil)
	var cur currentResponse
	decode(t, rec, &cur)
	assert.False(t, cur.HasPaid)
}

func TestVerifyUnknownOrder(t *testing.T) {
	f := newFixture(t)

	proof := engine.GatewayProof{
		OrderID:   "order_missing",
		PaymentID: "pay_x",
		Signature: engine.Signature(testSecret, "order_missing", "pay_x"),
	}
	rec := f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyOrderStoreFailure(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)
	var created createOrderResponse
	decode(t, rec, &created)

	// a store failure is not "unknown order"
	f.orders.fail = fmt.Errorf("connection refused")
	proof := engine.GatewayProof{
		OrderID:   created.OrderID,
		PaymentID: "pay_down",
		Signature: engine.Signature(testSecret, created.OrderID, "pay_down"),
	}
	rec = f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	f.orders.fail = nil
	rec = f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyForeignOrder(t *testing.T) {
	f := newFixture(t)

	other := &members.User{
		FullName:   "Other",
		Email:      "other@example.com",
		Phone:      "9000000003",
		IsApproved: true,
		Role:       members.RoleUser,
	}
	require.NoError(t, f.users.Create(context.Background(), other))
	otherToken, err := f.tokens.Issue(other.UserID, members.RoleUser)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)
	var created createOrderResponse
	decode(t, rec, &created)

	proof := engine.GatewayProof{
		OrderID:   created.OrderID,
		PaymentID: "pay_theft",
		Signature: engine.Signature(testSecret, created.OrderID, "pay_theft"),
	}
	rec = f.do(t, http.MethodPost, "/api/savings/verify-payment", otherToken, proof)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecordCapturedIsIdempotentWithVerify(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)
	var created createOrderResponse
	decode(t, rec, &created)

	proof := engine.GatewayProof{
		OrderID:   created.OrderID,
		PaymentID: "pay_hook",
		Signature: engine.Signature(testSecret, created.OrderID, "pay_hook"),
	}
	rec = f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	require.Equal(t, http.StatusOK, rec.Code)

	// the webhook replaying the same capture leaves a single record
	c := f.e.NewContext(httptest.NewRequest(http.MethodPost, "/webhook/razorpay", nil), httptest.NewRecorder())
	require.NoError(t, f.svc.RecordCaptured(c, created.OrderID, "pay_hook"))

	p := period.Period{Year: 2024, Month: time.March}
	recs, err := f.ledger.ListForPeriod(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/savings/analytics", f.memberToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)
	var created createOrderResponse
	decode(t, rec, &created)
	proof := engine.GatewayProof{
		OrderID:   created.OrderID,
		PaymentID: "pay_an1",
		Signature: engine.Signature(testSecret, created.OrderID, "pay_an1"),
	}
	rec = f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/savings/analytics", f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res engine.Analytics
	decode(t, rec, &res)
	assert.Equal(t, 1, res.TotalMembers)
	assert.Equal(t, 1, res.PaidCount)
	assert.Equal(t, 0, res.UnpaidCount)
	assert.EqualValues(t, 50000, res.TotalMonth)
	assert.EqualValues(t, 50000, res.TotalYear)
}

func TestMembersStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/savings/members-status", f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res []memberStatus
	decode(t, rec, &res)
	require.Len(t, res, 1)
	assert.Equal(t, f.memberID, res[0].User.UserID)
	assert.False(t, res[0].HasPaid)

	recOrder := f.do(t, http.MethodPost, "/api/savings/create-order", f.memberToken, map[string]int64{"amount": 500})
	require.Equal(t, http.StatusOK, recOrder.Code)
	var created createOrderResponse
	decode(t, recOrder, &created)
	proof := engine.GatewayProof{
		OrderID:   created.OrderID,
		PaymentID: "pay_ms1",
		Signature: engine.Signature(testSecret, created.OrderID, "pay_ms1"),
	}
	recVerify := f.do(t, http.MethodPost, "/api/savings/verify-payment", f.memberToken, proof)
	require.Equal(t, http.StatusOK, recVerify.Code)

	rec = f.do(t, http.MethodGet, "/api/savings/members-status", f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	require.Len(t, res, 1)
	assert.True(t, res[0].HasPaid)
	require.NotNil(t, res[0].Payment)
	assert.Equal(t, "pay_ms1", res[0].Payment.PaymentID)
}
