package port

import (
	"context"

	"gridbot/internal/domain/model"
)

// AuditLog records per-cycle portfolio snapshots. Append-only, observability
// only: a failed write never affects a running cycle.
type AuditLog interface {
	InsertPortfolio(ctx context.Context, snap model.PortfolioSnapshot) error
}
