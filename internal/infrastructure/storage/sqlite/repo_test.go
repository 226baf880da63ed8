package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gridbot/internal/domain"
	"gridbot/internal/domain/model"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGetCheapestLotEmpty(t *testing.T) {
	repo := newTestRepo(t)

	lot, err := repo.GetCheapestLot(context.Background(), "ETH/BTC")
	if err != nil {
		t.Fatalf("GetCheapestLot failed: %v", err)
	}
	if lot != nil {
		t.Errorf("expected nil lot on empty ledger, got %+v", lot)
	}
}

func TestGetCheapestLotReturnsMinimumPrice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, p := range []float64{0.052, 0.048, 0.050, 0.049} {
		if err := repo.UpsertLot(ctx, "ETH/BTC", p, 0.2); err != nil {
			t.Fatalf("UpsertLot failed: %v", err)
		}
	}
	// lot on another market must not interfere
	if err := repo.UpsertLot(ctx, "LTC/BTC", 0.001, 1.0); err != nil {
		t.Fatalf("UpsertLot failed: %v", err)
	}

	lot, err := repo.GetCheapestLot(ctx, "ETH/BTC")
	if err != nil {
		t.Fatalf("GetCheapestLot failed: %v", err)
	}
	if lot == nil || lot.Price != 0.048 {
		t.Errorf("expected cheapest lot at 0.048, got %+v", lot)
	}
}

func TestUpsertLotOverwritesSizeAtSamePrice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertLot(ctx, "ETH/BTC", 0.05, 0.2); err != nil {
		t.Fatalf("UpsertLot failed: %v", err)
	}
	if err := repo.UpsertLot(ctx, "ETH/BTC", 0.05, 0.35); err != nil {
		t.Fatalf("UpsertLot failed: %v", err)
	}

	lot, err := repo.GetCheapestLot(ctx, "ETH/BTC")
	if err != nil {
		t.Fatalf("GetCheapestLot failed: %v", err)
	}
	if lot == nil || lot.Size != 0.35 {
		t.Errorf("expected size overwritten to 0.35, got %+v", lot)
	}
}

func TestDeleteCheapestLot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.UpsertLot(ctx, "ETH/BTC", 0.048, 0.2)
	repo.UpsertLot(ctx, "ETH/BTC", 0.050, 0.3)

	if err := repo.DeleteCheapestLot(ctx, "ETH/BTC"); err != nil {
		t.Fatalf("DeleteCheapestLot failed: %v", err)
	}

	lot, err := repo.GetCheapestLot(ctx, "ETH/BTC")
	if err != nil {
		t.Fatalf("GetCheapestLot failed: %v", err)
	}
	if lot == nil || lot.Price != 0.050 {
		t.Errorf("expected next-cheapest lot at 0.050, got %+v", lot)
	}
}

func TestDeleteCheapestLotEmptyLedger(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.DeleteCheapestLot(context.Background(), "ETH/BTC")
	if !errors.Is(err, domain.ErrLedgerEmpty) {
		t.Errorf("expected ErrLedgerEmpty, got %v", err)
	}
}

func TestInsertPortfolio(t *testing.T) {
	repo := newTestRepo(t)

	snap := model.PortfolioSnapshot{
		Market:     "ETH/BTC",
		Timestamp:  1234567890000,
		Quote:      1.0,
		Base:       0.4,
		CurrBid:    0.05,
		TotalQuote: 1.02,
	}
	if err := repo.InsertPortfolio(context.Background(), snap); err != nil {
		t.Fatalf("InsertPortfolio failed: %v", err)
	}
}
