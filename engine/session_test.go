package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrujansacharya/Team-Connect-App/ffsm"
	"github.com/shrujansacharya/Team-Connect-App/ledger"
)

func TestCheckoutSession_Success(t *testing.T) {
	ctx := context.Background()

	var gotProof *GatewayProof
	s := NewCheckoutSession(SessionHooks{
		OnSuccess: func(ctx context.Context, order *PaymentOrder, proof *GatewayProof) {
			gotProof = proof
		},
	})
	assert.Equal(t, SessionIdle, s.State())

	order := testOrder("m1")
	require.NoError(t, s.Open(ctx, order))
	assert.Equal(t, SessionOpened, s.State())

	proof := validProof(order, "pay_1")
	require.NoError(t, s.Success(ctx, proof))
	assert.Equal(t, SessionSucceeded, s.State())
	assert.Equal(t, proof, gotProof)

	out := s.Wait(ctx)
	assert.Equal(t, SessionSucceeded, out.State)
	assert.Equal(t, proof, out.Proof)
}

func TestCheckoutSession_TerminalFiresOnce(t *testing.T) {
	ctx := context.Background()

	var successes, failures int
	s := NewCheckoutSession(SessionHooks{
		OnSuccess: func(context.Context, *PaymentOrder, *GatewayProof) { successes++ },
		OnFailure: func(context.Context, *PaymentOrder, Failure) { failures++ },
	})
	order := testOrder("m1")
	require.NoError(t, s.Open(ctx, order))
	require.NoError(t, s.Success(ctx, validProof(order, "pay_1")))

	// every further terminal report is rejected
	assert.Equal(t, ErrSessionClosed, s.Success(ctx, validProof(order, "pay_2")))
	assert.Equal(t, ErrSessionClosed, s.Fail(ctx, Failure{Code: "declined"}))
	assert.Equal(t, ErrSessionClosed, s.Dismiss(ctx))

	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, failures)
	assert.Equal(t, SessionSucceeded, s.State())
}

func TestCheckoutSession_CannotResolveBeforeOpen(t *testing.T) {
	ctx := context.Background()
	s := NewCheckoutSession(SessionHooks{})

	err := s.Success(ctx, &GatewayProof{})
	assert.Error(t, err)
	assert.Equal(t, SessionIdle, s.State())
}

func TestCheckoutSession_Failure(t *testing.T) {
	ctx := context.Background()
	s := NewCheckoutSession(SessionHooks{})
	require.NoError(t, s.Open(ctx, testOrder("m1")))
	require.NoError(t, s.Fail(ctx, Failure{Code: "network", Description: "gateway timeout"}))

	out := s.Wait(ctx)
	assert.Equal(t, SessionFailed, out.State)
	require.NotNil(t, out.Failure)
	assert.Equal(t, "network", out.Failure.Code)
	assert.Nil(t, out.Proof)
}

func TestCheckoutSession_DismissThenRetryWithNewOrder(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemory()
	v := NewVerifier(testSecret, store)

	// first attempt: user closes the checkout UI
	s1 := NewCheckoutSession(SessionHooks{})
	order1 := testOrder("m1")
	require.NoError(t, s1.Open(ctx, order1))
	require.NoError(t, s1.Dismiss(ctx))
	assert.Equal(t, SessionDismissed, s1.Wait(ctx).State)

	// no ledger impact, member still unpaid
	_, err := store.Get(ctx, "m1", testPeriod)
	assert.Equal(t, ledger.ErrNotFound, err)

	// retry with a fresh order succeeds normally
	s2 := NewCheckoutSession(SessionHooks{})
	order2 := testOrder("m1")
	order2.OrderID = "order_A2"
	require.NoError(t, s2.Open(ctx, order2))
	require.NoError(t, s2.Success(ctx, validProof(order2, "pay_2")))

	rec, err := v.Verify(ctx, order2, s2.Wait(ctx).Proof)
	require.NoError(t, err)
	assert.Equal(t, "pay_2", rec.PaymentID)
}

func TestCheckoutSession_WaitCancelledIsDismissed(t *testing.T) {
	s := NewCheckoutSession(SessionHooks{})
	require.NoError(t, s.Open(context.Background(), testOrder("m1")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	out := s.Wait(ctx)
	assert.Equal(t, SessionDismissed, out.State)
	// the machine itself did not move; it is simply unreachable now
	assert.Equal(t, ffsm.State(SessionOpened), s.State())
}
