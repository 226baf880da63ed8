package trader

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"gridbot/internal/application/port"
	"gridbot/internal/domain"
	"gridbot/internal/domain/model"
	"gridbot/internal/domain/strategy"
)

type Deps struct {
	Exchange port.Exchange
	Stream   port.OrderStream
	Ledger   port.Ledger
	Audit    port.AuditLog

	Market    string // e.g. "ETH/BTC"
	BaseCoin  string // e.g. "ETH"
	QuoteCoin string // e.g. "BTC"

	Strategy         strategy.Config
	WatchdogInterval time.Duration
}

// Service drives cycles from order-fill notifications and a periodic
// watchdog. Cycles run inside the event loop itself, so two cycles can never
// execute concurrently; pending triggers coalesce into at most one rerun.
type Service struct {
	deps    Deps
	trigger chan struct{}
}

func NewService(deps Deps) *Service {
	if deps.WatchdogInterval <= 0 {
		deps.WatchdogInterval = time.Minute
	}
	return &Service{
		deps:    deps,
		trigger: make(chan struct{}, 1),
	}
}

func (s *Service) Run(ctx context.Context) error {
	updates, err := s.deps.Stream.Subscribe(ctx)
	if err != nil {
		return err
	}

	watchdog := time.NewTicker(s.deps.WatchdogInterval)
	defer watchdog.Stop()

	log.Info().
		Str("market", s.deps.Market).
		Dur("watchdog_interval", s.deps.WatchdogInterval).
		Msg("trader started")

	s.requestCycle()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case u, ok := <-updates:
			if !ok {
				// the stream only closes once the context is cancelled
				return errors.New("order stream closed")
			}
			s.handleUpdate(ctx, u)

		case <-watchdog.C:
			s.watchdogCheck(ctx)

		case <-s.trigger:
			rerun, err := s.runCycle(ctx)
			if err != nil {
				log.Error().Err(err).Msg("cycle aborted")
			}
			if rerun {
				s.requestCycle()
			}
		}
	}
}

// requestCycle schedules a cycle run, collapsing with any already-pending
// request.
func (s *Service) requestCycle() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// handleUpdate advances the ledger on fully-filled orders and schedules a
// re-quote. Partial fills and open-order updates are ignored.
func (s *Service) handleUpdate(ctx context.Context, u port.OrderUpdate) {
	if u.Market != s.deps.Market || !u.Filled() {
		return
	}

	switch u.Side {
	case model.SideBuy:
		// market buys are recorded by the bootstrap path at submission time;
		// only resting limit buys reach the ledger through this path
		if u.Type != model.TypeLimit {
			return
		}
		if err := s.deps.Ledger.UpsertLot(ctx, u.Market, u.Price, u.Size); err != nil {
			log.Error().Err(err).Str("market", u.Market).Msg("failed to record buy fill")
			return
		}
		log.Info().
			Str("market", u.Market).
			Float64("price", u.Price).
			Float64("size", u.Size).
			Msg("buy filled, lot recorded")

	case model.SideSell:
		err := s.deps.Ledger.DeleteCheapestLot(ctx, u.Market)
		switch {
		case errors.Is(err, domain.ErrLedgerEmpty):
			// a sell filled that the ledger knows nothing about; keep the
			// ledger as-is and let the next cycle re-quote
			log.Warn().
				Err(domain.ErrInconsistentState).
				Str("market", u.Market).
				Msg("sell fill with empty ledger")
		case err != nil:
			log.Error().Err(err).Str("market", u.Market).Msg("failed to record sell fill")
		default:
			log.Info().
				Str("market", u.Market).
				Float64("price", u.Price).
				Float64("size", u.Size).
				Msg("sell filled, cheapest lot closed")
		}
	}

	s.requestCycle()
}

// watchdogCheck re-triggers a cycle when no orders are resting on the
// exchange; this recovers from missed notifications, restarts and
// exchange-side expiry. The cycle's cancel-first step makes a spurious
// trigger harmless.
func (s *Service) watchdogCheck(ctx context.Context) {
	orders, err := s.deps.Exchange.GetOpenOrders(ctx, s.deps.Market)
	if err != nil {
		log.Warn().Err(err).Msg("watchdog open-orders query failed")
		return
	}
	if len(orders) > 0 {
		return
	}
	log.Info().Str("market", s.deps.Market).Msg("watchdog: no open orders, scheduling cycle")
	s.requestCycle()
}
