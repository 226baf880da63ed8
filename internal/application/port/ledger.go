package port

import (
	"context"

	"gridbot/internal/domain/model"
)

// Ledger owns the open-lot inventory. The cheapest lot (minimum price) is
// the designated sell target for a market.
type Ledger interface {
	// GetCheapestLot returns the lot with the minimum price for the market,
	// or (nil, nil) when no lots exist.
	GetCheapestLot(ctx context.Context, market string) (*model.Lot, error)

	// UpsertLot inserts a lot or overwrites the size of an existing lot at
	// the exact same price.
	UpsertLot(ctx context.Context, market string, price, size float64) error

	// DeleteCheapestLot removes the minimum-price lot. Returns
	// domain.ErrLedgerEmpty when the market has no lots.
	DeleteCheapestLot(ctx context.Context, market string) error
}
