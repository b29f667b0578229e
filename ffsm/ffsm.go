// Package ffsm is a small finite state machine over named states.
// Transitions are registered on a Stack and executed by a Machine that
// carries the current state; a transition not present on the stack is an
// error, so illegal moves never happen silently.
package ffsm

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var ErrTransitionNotAllowed = errors.New("transition not allowed")

type State string

func (s State) String() string {
	return string(s)
}

func (s State) Match(in State) bool {
	return s == in
}

type Payload interface{}

// CallbackFunc runs on a transition. Returning an error aborts the
// transition and the machine keeps its current state.
type CallbackFunc func(ctx context.Context, payload Payload) (context.Context, error)

type edge struct {
	src State
	dst State
}

type handler struct {
	fn   CallbackFunc
	name string
}

type Stack map[edge][]handler

func (s Stack) Add(src, dst State, fn CallbackFunc, name string) Stack {
	e := edge{src: src, dst: dst}
	s[e] = append(s[e], handler{fn: fn, name: name})
	return s
}

type Machine struct {
	mu    sync.Mutex
	stack Stack
	state *State
}

// MachineFrom builds a machine over the stack with the given current state.
// The state pointer is updated in place on every successful dispatch.
func MachineFrom(s Stack, state *State) *Machine {
	return &Machine{stack: s, state: state}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// Dispatch moves the machine from its current state to dst, running all
// handlers registered for that edge in order.
func (m *Machine) Dispatch(ctx context.Context, dst State, payload Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := edge{src: *m.state, dst: dst}
	handlers, ok := m.stack[e]
	if !ok {
		return errors.Wrapf(ErrTransitionNotAllowed, "%s>%s", *m.state, dst)
	}
	for _, h := range handlers {
		var err error
		ctx, err = h.fn(ctx, payload)
		if err != nil {
			return errors.Wrapf(err, "dispatch %q", h.name)
		}
	}
	*m.state = dst
	return nil
}
