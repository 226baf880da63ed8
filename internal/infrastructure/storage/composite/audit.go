package composite

import (
	"context"

	"gridbot/internal/application/port"
	"gridbot/internal/domain/model"
)

// Audit fans portfolio snapshots out to several audit logs (e.g. the primary
// database plus a Redis stream). The first error is reported, all sinks are
// still attempted.
type Audit struct {
	logs []port.AuditLog
}

func NewAudit(logs ...port.AuditLog) *Audit {
	// nil sinks are allowed; filter in constructor for safety
	out := make([]port.AuditLog, 0, len(logs))
	for _, l := range logs {
		if l != nil {
			out = append(out, l)
		}
	}
	return &Audit{logs: out}
}

func (a *Audit) InsertPortfolio(ctx context.Context, snap model.PortfolioSnapshot) error {
	var firstErr error
	for _, l := range a.logs {
		if err := l.InsertPortfolio(ctx, snap); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.AuditLog = (*Audit)(nil)
