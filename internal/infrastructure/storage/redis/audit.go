package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gridbot/internal/application/port"
	"gridbot/internal/domain"
	"gridbot/internal/domain/model"
)

// Audit publishes portfolio snapshots to a Redis stream and pub/sub channel
// so dashboards can follow the bot without touching its database.
type Audit struct {
	rdb     *redis.Client
	stream  string // prefix + ":portfolio"
	channel string // prefix + ":portfolio:pub"
}

func NewAudit(rdb *redis.Client, prefix string) *Audit {
	return &Audit{
		rdb:     rdb,
		stream:  prefix + ":portfolio",
		channel: prefix + ":portfolio:pub",
	}
}

func (a *Audit) InsertPortfolio(ctx context.Context, snap model.PortfolioSnapshot) error {
	// 1) Stream: XADD <stream> * market ts quote base bid total
	_, err := a.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: a.stream,
		Values: map[string]any{
			"market":      snap.Market,
			"ts_ms":       snap.Timestamp,
			"quote":       snap.Quote,
			"base":        snap.Base,
			"curr_bid":    snap.CurrBid,
			"total_quote": snap.TotalQuote,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("%w: portfolio xadd: %v", domain.ErrStorage, err)
	}

	// 2) PubSub: PUBLISH <channel> json
	b, _ := json.Marshal(map[string]any{
		"market":      snap.Market,
		"ts_ms":       snap.Timestamp,
		"quote":       snap.Quote,
		"base":        snap.Base,
		"curr_bid":    snap.CurrBid,
		"total_quote": snap.TotalQuote,
	})
	if err := a.rdb.Publish(ctx, a.channel, string(b)).Err(); err != nil {
		return fmt.Errorf("%w: portfolio publish: %v", domain.ErrStorage, err)
	}
	return nil
}

var _ port.AuditLog = (*Audit)(nil)
