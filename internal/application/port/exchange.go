package port

import (
	"context"

	"gridbot/internal/domain/model"
)

// OrderUpdate is a single order-state change pushed by the exchange.
type OrderUpdate struct {
	Market     string
	Side       model.Side
	Type       model.OrderType
	Status     string // "new", "open", "closed"
	Size       float64
	FilledSize float64
	Price      float64
}

// Filled reports whether the order reached a fully-filled terminal state.
// Cancelled orders also close, but with a filled size short of the ordered
// size.
func (u OrderUpdate) Filled() bool {
	return u.Status == "closed" && u.Size == u.FilledSize && u.Size > 0
}

// Exchange is the connectivity collaborator for order placement and
// account/market queries. All calls may fail with connectivity or rejection
// errors; timeouts are the implementation's responsibility.
type Exchange interface {
	CancelAllOrders(ctx context.Context, market string) error
	GetBalances(ctx context.Context) (map[string]model.Balance, error)
	GetMarketSnapshot(ctx context.Context, market string) (model.MarketSnapshot, error)
	PlaceOrder(ctx context.Context, intent model.OrderIntent) (model.OrderAck, error)
	GetOpenOrders(ctx context.Context, market string) ([]model.Order, error)
}

// OrderStream yields push notifications for order state changes.
type OrderStream interface {
	Subscribe(ctx context.Context) (<-chan OrderUpdate, error)
}
