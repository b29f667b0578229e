// Package gateway persists the gateway-side payment orders referenced by
// verification. Orders are insert-only: a created order that never
// resolves is inert and simply becomes unreachable.
package gateway

import (
	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/shrujansacharya/Team-Connect-App/engine"
)

var ErrOrderNotFound = errors.New("payment order not found")

type Store struct {
	DB *reform.DB
}

func NewStore(db *reform.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) NewOrder(order *engine.PaymentOrder) error {
	if err := s.DB.Insert(order); err != nil {
		return errors.Wrap(err, "Failed insert payment order.")
	}
	return nil
}

func (s *Store) GetByOrderID(orderID string) (*engine.PaymentOrder, error) {
	order := &engine.PaymentOrder{OrderID: orderID}
	if err := s.DB.Reload(order); err != nil {
		if err == reform.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "Failed get payment order.")
	}
	return order, nil
}
