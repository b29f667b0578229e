package engine

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shrujansacharya/Team-Connect-App/ffsm"
)

// Checkout session states. A session is single-use: Idle until an order is
// handed to the external checkout UI, Opened while the gateway owns the
// flow, then exactly one of the three terminal states.
const (
	SessionIdle      ffsm.State = "idle"
	SessionOpened    ffsm.State = "opened"
	SessionSucceeded ffsm.State = "succeeded"
	SessionFailed    ffsm.State = "failed"
	SessionDismissed ffsm.State = "dismissed"
)

var ErrSessionClosed = errors.New("checkout session already resolved")

// Failure is the gateway's structured failure reason.
type Failure struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Outcome is the single terminal result of a checkout session.
type Outcome struct {
	State   ffsm.State
	Proof   *GatewayProof
	Failure *Failure
}

// SessionHooks are fired on terminal transitions, at most once per session.
// All hooks are optional.
type SessionHooks struct {
	OnSuccess func(ctx context.Context, order *PaymentOrder, proof *GatewayProof)
	OnFailure func(ctx context.Context, order *PaymentOrder, f Failure)
	OnDismiss func(ctx context.Context, order *PaymentOrder)
}

// CheckoutSession drives one checkout attempt through its state machine.
// The machine itself never times out; callers bound the wait with Wait's
// context and treat cancellation as a dismissal.
type CheckoutSession struct {
	state ffsm.State
	fsm   *ffsm.Machine
	hooks SessionHooks
	order *PaymentOrder

	done    chan struct{}
	outcome Outcome

	l *zap.Logger
}

func NewCheckoutSession(hooks SessionHooks) *CheckoutSession {
	s := &CheckoutSession{
		state: SessionIdle,
		hooks: hooks,
		done:  make(chan struct{}),
		l:     zap.L().Named("checkout_session"),
	}

	stack := make(ffsm.Stack)
	stack.Add(SessionIdle, SessionOpened,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			order, ok := payload.(*PaymentOrder)
			if !ok || order == nil {
				return ctx, errors.New("bad payload: expected payment order")
			}
			s.order = order
			return ctx, nil
		},
		"idle>opened",
	)
	stack.Add(SessionOpened, SessionSucceeded,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			proof, ok := payload.(*GatewayProof)
			if !ok || proof == nil {
				return ctx, errors.New("bad payload: expected gateway proof")
			}
			s.outcome = Outcome{State: SessionSucceeded, Proof: proof}
			if s.hooks.OnSuccess != nil {
				s.hooks.OnSuccess(ctx, s.order, proof)
			}
			close(s.done)
			return ctx, nil
		},
		"opened>succeeded",
	)
	stack.Add(SessionOpened, SessionFailed,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			f, ok := payload.(Failure)
			if !ok {
				return ctx, errors.New("bad payload: expected failure")
			}
			s.outcome = Outcome{State: SessionFailed, Failure: &f}
			if s.hooks.OnFailure != nil {
				s.hooks.OnFailure(ctx, s.order, f)
			}
			close(s.done)
			return ctx, nil
		},
		"opened>failed",
	)
	stack.Add(SessionOpened, SessionDismissed,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			s.outcome = Outcome{State: SessionDismissed}
			if s.hooks.OnDismiss != nil {
				s.hooks.OnDismiss(ctx, s.order)
			}
			close(s.done)
			return ctx, nil
		},
		"opened>dismissed",
	)

	s.fsm = ffsm.MachineFrom(stack, &s.state)
	return s
}

func (s *CheckoutSession) State() ffsm.State {
	return s.fsm.State()
}

// Open hands the order to the external checkout UI.
func (s *CheckoutSession) Open(ctx context.Context, order *PaymentOrder) error {
	return s.dispatch(ctx, SessionOpened, order)
}

// Success reports the gateway proof. Fires at most once.
func (s *CheckoutSession) Success(ctx context.Context, proof *GatewayProof) error {
	return s.dispatch(ctx, SessionSucceeded, proof)
}

// Fail reports a structured gateway failure. Fires at most once.
func (s *CheckoutSession) Fail(ctx context.Context, f Failure) error {
	return s.dispatch(ctx, SessionFailed, f)
}

// Dismiss reports that the user closed the UI without a gateway response.
func (s *CheckoutSession) Dismiss(ctx context.Context) error {
	return s.dispatch(ctx, SessionDismissed, nil)
}

func (s *CheckoutSession) dispatch(ctx context.Context, dst ffsm.State, payload ffsm.Payload) error {
	err := s.fsm.Dispatch(ctx, dst, payload)
	if err != nil {
		if errors.Is(err, ffsm.ErrTransitionNotAllowed) {
			cur := s.fsm.State()
			if cur != SessionIdle && cur != SessionOpened {
				return ErrSessionClosed
			}
		}
		return err
	}
	s.l.Debug("Checkout session transition.", zap.String("state", dst.String()))
	return nil
}

// Wait blocks until the session reaches a terminal state or ctx ends.
// A cancelled wait yields a Dismissed outcome: an abandoned checkout has
// no ledger impact and the order simply becomes unreachable.
func (s *CheckoutSession) Wait(ctx context.Context) Outcome {
	select {
	case <-s.done:
		return s.outcome
	case <-ctx.Done():
		return Outcome{State: SessionDismissed}
	}
}
