package members_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrujansacharya/Team-Connect-App/ledger"
	"github.com/shrujansacharya/Team-Connect-App/period"
	"github.com/shrujansacharya/Team-Connect-App/services/auth"
	"github.com/shrujansacharya/Team-Connect-App/services/members"
)

type fixture struct {
	e      *echo.Echo
	users  *members.Memory
	ledger *ledger.Memory
	tokens *auth.Tokens

	adminToken string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		e:      echo.New(),
		users:  members.NewMemory(),
		ledger: ledger.NewMemory(),
		tokens: auth.NewTokens("test-jwt-secret"),
	}
	resolver := &period.Resolver{Now: func() time.Time {
		return time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)
	}}
	guard := auth.NewGuard(f.tokens, f.users)
	svc := members.NewService(f.users, f.ledger, resolver)
	svc.Routes(f.e.Group("/api"), guard.Authenticate, guard.RequireApproved, guard.RequireAdmin)

	adminToken, err := f.tokens.Issue(auth.AdminID, members.RoleAdmin)
	require.NoError(t, err)
	f.adminToken = adminToken
	return f
}

func (f *fixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) addUser(t *testing.T, name, email, phone string, approved bool) *members.User {
	t.Helper()
	u := &members.User{
		FullName:   name,
		Email:      email,
		Phone:      phone,
		IsApproved: approved,
		Role:       members.RoleUser,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestApprovalFlow(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "Pending", "p@x.com", "1", false)

	token, err := f.tokens.Issue(u.UserID, members.RoleUser)
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/members", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// members cannot approve anyone
	rec = f.do(http.MethodPut, "/api/users/"+u.UserID+"/approve", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, "/api/users/"+u.UserID+"/approve", f.adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/members", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApproveUnknownUser(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPut, "/api/users/nope/approve", f.adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "Member", "m@x.com", "2", true)
	token, err := f.tokens.Issue(u.UserID, members.RoleUser)
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/users", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/users", f.adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []*members.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 1)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "Gone", "g@x.com", "3", true)

	rec := f.do(http.MethodDelete, "/api/users/"+u.UserID, f.adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodDelete, "/api/users/"+u.UserID, f.adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectoryPaidFlag(t *testing.T) {
	f := newFixture(t)
	paid := f.addUser(t, "Paid", "paid@x.com", "4", true)
	unpaid := f.addUser(t, "Unpaid", "unpaid@x.com", "5", true)

	_, _, err := f.ledger.InsertIfAbsent(context.Background(), &ledger.PaymentRecord{
		MemberID:   paid.UserID,
		Year:       2024,
		Month:      3,
		Amount:     50000,
		PaymentID:  "pay_dir1",
		Method:     "UPI",
		VerifiedAt: time.Now(),
	})
	require.NoError(t, err)

	token, err := f.tokens.Issue(paid.UserID, members.RoleUser)
	require.NoError(t, err)
	rec := f.do(http.MethodGet, "/api/members", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []struct {
		UserID              string `json:"id"`
		HasPaidCurrentMonth bool   `json:"has_paid_current_month"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)

	byID := make(map[string]bool, len(out))
	for _, e := range out {
		byID[e.UserID] = e.HasPaidCurrentMonth
	}
	assert.True(t, byID[paid.UserID])
	assert.False(t, byID[unpaid.UserID])
}
