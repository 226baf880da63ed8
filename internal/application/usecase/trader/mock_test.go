package trader

import (
	"context"
	"sync"

	"gridbot/internal/application/port"
	"gridbot/internal/domain"
	"gridbot/internal/domain/model"
)

type mockExchange struct {
	mu sync.Mutex

	balances   map[string]model.Balance
	snapshot   model.MarketSnapshot
	openOrders []model.Order

	cancelErr     error
	balancesErr   error
	snapshotErr   error
	openOrdersErr error
	placeErr      map[model.Side]error

	cancelCalls int
	placed      []model.OrderIntent
}

func (m *mockExchange) CancelAllOrders(ctx context.Context, market string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	return m.cancelErr
}

func (m *mockExchange) GetBalances(ctx context.Context) (map[string]model.Balance, error) {
	if m.balancesErr != nil {
		return nil, m.balancesErr
	}
	return m.balances, nil
}

func (m *mockExchange) GetMarketSnapshot(ctx context.Context, market string) (model.MarketSnapshot, error) {
	if m.snapshotErr != nil {
		return model.MarketSnapshot{}, m.snapshotErr
	}
	return m.snapshot, nil
}

func (m *mockExchange) PlaceOrder(ctx context.Context, intent model.OrderIntent) (model.OrderAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.placeErr[intent.Side]; err != nil {
		return model.OrderAck{}, err
	}
	m.placed = append(m.placed, intent)
	return model.OrderAck{ID: "1", Status: "new"}, nil
}

func (m *mockExchange) GetOpenOrders(ctx context.Context, market string) ([]model.Order, error) {
	if m.openOrdersErr != nil {
		return nil, m.openOrdersErr
	}
	return m.openOrders, nil
}

func (m *mockExchange) placedOrders() []model.OrderIntent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.OrderIntent, len(m.placed))
	copy(out, m.placed)
	return out
}

type mockLedger struct {
	mu   sync.Mutex
	lots []model.Lot

	getErr    error
	upsertErr error
	deleteErr error
}

func (m *mockLedger) GetCheapestLot(ctx context.Context, market string) (*model.Lot, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *model.Lot
	for i := range m.lots {
		l := m.lots[i]
		if l.Market != market {
			continue
		}
		if best == nil || l.Price < best.Price {
			best = &m.lots[i]
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *mockLedger) UpsertLot(ctx context.Context, market string, price, size float64) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lots {
		if m.lots[i].Market == market && m.lots[i].Price == price {
			m.lots[i].Size = size
			return nil
		}
	}
	m.lots = append(m.lots, model.Lot{Market: market, Price: price, Size: size})
	return nil
}

func (m *mockLedger) DeleteCheapestLot(ctx context.Context, market string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	min := -1
	for i := range m.lots {
		if m.lots[i].Market != market {
			continue
		}
		if min < 0 || m.lots[i].Price < m.lots[min].Price {
			min = i
		}
	}
	if min < 0 {
		return domain.ErrLedgerEmpty
	}
	m.lots = append(m.lots[:min], m.lots[min+1:]...)
	return nil
}

func (m *mockLedger) allLots() []model.Lot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Lot, len(m.lots))
	copy(out, m.lots)
	return out
}

type mockStream struct {
	ch chan port.OrderUpdate
}

func newMockStream() *mockStream {
	return &mockStream{ch: make(chan port.OrderUpdate, 16)}
}

func (m *mockStream) Subscribe(ctx context.Context) (<-chan port.OrderUpdate, error) {
	return m.ch, nil
}

type mockAudit struct {
	mu    sync.Mutex
	snaps []model.PortfolioSnapshot
	err   error
}

func (m *mockAudit) InsertPortfolio(ctx context.Context, snap model.PortfolioSnapshot) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *mockAudit) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

var _ port.Exchange = (*mockExchange)(nil)
var _ port.Ledger = (*mockLedger)(nil)
var _ port.OrderStream = (*mockStream)(nil)
var _ port.AuditLog = (*mockAudit)(nil)
