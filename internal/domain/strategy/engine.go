package strategy

import (
	"math"

	"gridbot/internal/domain/model"
)

// Config holds the grid parameters. Fractions are expressed as ratios
// (0.001 = 0.1%).
type Config struct {
	StepDistance float64 // distance below last price for the resting buy
	UsedEquity   float64 // fraction of total quote balance spent per buy
	MinLotSize   float64 // exchange minimum order size (3-decimal granularity)
	TakeProfit   float64 // margin above the lot's entry price for the sell

	// BootstrapOnLowInventory also takes the bootstrap branch when the free
	// base balance cannot cover the next buy, not only when the ledger is
	// empty.
	BootstrapOnLowInventory bool
}

// Input is everything a quote computation depends on. The engine holds no
// state of its own.
type Input struct {
	Snapshot   model.MarketSnapshot
	TotalQuote float64 // total quote-currency balance, e.g. BTC
	FreeBase   float64 // free base-currency balance, e.g. ETH
	Cheapest   *model.Lot
}

// Decision is the set of orders to submit. Bootstrap marks the single
// market-buy path that seeds inventory; the caller records the lot and
// schedules one follow-up cycle once that order is confirmed.
type Decision struct {
	Intents   []model.OrderIntent
	Bootstrap bool
}

// Round3 rounds to the exchange's 3-decimal lot granularity, half away from
// zero (math.Round semantics).
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Evaluate computes the next buy/sell quote pair from market data, balances
// and the cheapest open lot.
func Evaluate(cfg Config, in Input) Decision {
	buyPrice := in.Snapshot.Last * (1 - cfg.StepDistance)

	buyAmount := Round3(in.TotalQuote * cfg.UsedEquity / in.Snapshot.Last)
	if buyAmount < cfg.MinLotSize {
		buyAmount = cfg.MinLotSize
	}

	bootstrap := in.Cheapest == nil
	if cfg.BootstrapOnLowInventory && in.FreeBase < buyAmount {
		bootstrap = true
	}
	if bootstrap {
		return Decision{
			Bootstrap: true,
			Intents: []model.OrderIntent{{
				Market: in.Snapshot.Market,
				Side:   model.SideBuy,
				Type:   model.TypeMarket,
				Size:   buyAmount,
			}},
		}
	}

	intents := []model.OrderIntent{{
		Market: in.Snapshot.Market,
		Side:   model.SideBuy,
		Type:   model.TypeLimit,
		Price:  buyPrice,
		Size:   buyAmount,
	}}

	// Never quote the sell below the live bid; the stored entry price may be
	// stale relative to the market.
	sellPrice := in.Cheapest.Price * (1 + cfg.TakeProfit)
	if sellPrice < in.Snapshot.Bid {
		sellPrice = in.Snapshot.Bid
	}
	sellAmount := in.Cheapest.Size

	if sellPrice > 0 && sellAmount > 0 {
		intents = append(intents, model.OrderIntent{
			Market: in.Snapshot.Market,
			Side:   model.SideSell,
			Type:   model.TypeLimit,
			Price:  sellPrice,
			Size:   sellAmount,
		})
	}

	return Decision{Intents: intents}
}
