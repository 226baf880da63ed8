package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gridbot/internal/domain/model"
	"gridbot/internal/domain/strategy"
)

// runCycle executes one full quoting cycle:
// cancel stale orders -> fetch balances and market -> audit snapshot ->
// read ledger -> evaluate strategy -> submit intents. A true rerun return
// means the bootstrap branch fired and one follow-up cycle should be
// scheduled.
//
// Failures before order submission abort the cycle without touching the
// ledger; the next trigger retries from scratch.
func (s *Service) runCycle(ctx context.Context) (rerun bool, err error) {
	market := s.deps.Market

	if err := s.deps.Exchange.CancelAllOrders(ctx, market); err != nil {
		return false, fmt.Errorf("cancel open orders: %w", err)
	}

	balances, err := s.deps.Exchange.GetBalances(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch balances: %w", err)
	}
	quote := balances[s.deps.QuoteCoin]
	base := balances[s.deps.BaseCoin]

	snap, err := s.deps.Exchange.GetMarketSnapshot(ctx, market)
	if err != nil {
		return false, fmt.Errorf("fetch market: %w", err)
	}
	if snap.Last <= 0 {
		return false, fmt.Errorf("market %s returned price %v", market, snap.Last)
	}

	s.writePortfolio(ctx, snap, quote, base)

	lot, err := s.deps.Ledger.GetCheapestLot(ctx, market)
	if err != nil {
		return false, fmt.Errorf("read ledger: %w", err)
	}

	dec := strategy.Evaluate(s.deps.Strategy, strategy.Input{
		Snapshot:   snap,
		TotalQuote: quote.Total,
		FreeBase:   base.Free,
		Cheapest:   lot,
	})

	if dec.Bootstrap {
		return s.submitBootstrap(ctx, snap, dec.Intents[0])
	}
	s.submitGrid(ctx, dec.Intents)
	return false, nil
}

// submitBootstrap places the inventory-seeding market buy. The lot is
// recorded at the snapshot ask only after the exchange accepted the order;
// a rejected or failed order leaves the ledger untouched.
func (s *Service) submitBootstrap(ctx context.Context, snap model.MarketSnapshot, intent model.OrderIntent) (bool, error) {
	ack, err := s.deps.Exchange.PlaceOrder(ctx, intent)
	if err != nil {
		return false, fmt.Errorf("bootstrap market buy: %w", err)
	}
	log.Info().
		Str("market", intent.Market).
		Str("order_id", ack.ID).
		Float64("size", intent.Size).
		Float64("ask", snap.Ask).
		Msg("bootstrap market buy placed")

	if err := s.deps.Ledger.UpsertLot(ctx, intent.Market, snap.Ask, intent.Size); err != nil {
		return false, fmt.Errorf("record bootstrap lot: %w", err)
	}
	return true, nil
}

// submitGrid places the resting limit buy and limit sell. The two orders are
// independent; one failing is logged and does not stop the other.
func (s *Service) submitGrid(ctx context.Context, intents []model.OrderIntent) {
	for _, intent := range intents {
		ack, err := s.deps.Exchange.PlaceOrder(ctx, intent)
		if err != nil {
			log.Error().
				Err(err).
				Str("market", intent.Market).
				Str("side", string(intent.Side)).
				Float64("price", intent.Price).
				Float64("size", intent.Size).
				Msg("limit order failed")
			continue
		}
		log.Info().
			Str("market", intent.Market).
			Str("side", string(intent.Side)).
			Str("order_id", ack.ID).
			Float64("price", intent.Price).
			Float64("size", intent.Size).
			Msg("limit order placed")
	}
}

// writePortfolio appends the per-cycle audit snapshot. Audit-only: failures
// are logged and never abort the cycle.
func (s *Service) writePortfolio(ctx context.Context, snap model.MarketSnapshot, quote, base model.Balance) {
	if s.deps.Audit == nil {
		return
	}
	rec := model.PortfolioSnapshot{
		Market:     s.deps.Market,
		Timestamp:  time.Now().UnixMilli(),
		Quote:      quote.Total,
		Base:       base.Total,
		CurrBid:    snap.Bid,
		TotalQuote: quote.Total + base.Total*snap.Bid,
	}
	if err := s.deps.Audit.InsertPortfolio(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("portfolio snapshot write failed")
	}
}
