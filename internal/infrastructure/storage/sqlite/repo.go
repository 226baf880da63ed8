package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"gridbot/internal/application/port"
	"gridbot/internal/domain"
	"gridbot/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	// WAL keeps watchdog reads from blocking on cycle writes.
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA synchronous = normal`,
	} {
		if _, err := r.db.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS "Position" (
  "market" TEXT NOT NULL,
  "price"  REAL NOT NULL,
  "size"   REAL NOT NULL,
  PRIMARY KEY ("market", "price")
);

CREATE TABLE IF NOT EXISTS "Portfolio" (
  "market"    TEXT NOT NULL,
  "timestamp" INTEGER NOT NULL,
  "btc"       REAL NULL,
  "eth"       REAL NULL,
  "curr_bid"  REAL NOT NULL,
  "total_btc" REAL NOT NULL,
  PRIMARY KEY ("timestamp")
);
`)
	return err
}

func (r *Repo) GetCheapestLot(ctx context.Context, market string) (*model.Lot, error) {
	var lot model.Lot
	err := r.db.QueryRowContext(ctx, `
		SELECT "market", "price", "size" FROM "Position"
		WHERE "market" = ?
		ORDER BY "price" ASC
		LIMIT 1
	`, market).Scan(&lot.Market, &lot.Price, &lot.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get cheapest lot: %v", domain.ErrStorage, err)
	}
	return &lot, nil
}

func (r *Repo) UpsertLot(ctx context.Context, market string, price, size float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO "Position" ("market", "price", "size")
		VALUES (?, ?, ?)
		ON CONFLICT ("market", "price") DO UPDATE SET
		"size" = excluded."size"
	`, market, price, size)
	if err != nil {
		return fmt.Errorf("%w: upsert lot: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *Repo) DeleteCheapestLot(ctx context.Context, market string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM "Position"
		WHERE "market" = ? AND "price" = (
			SELECT MIN("price") FROM "Position" WHERE "market" = ?
		)
	`, market, market)
	if err != nil {
		return fmt.Errorf("%w: delete cheapest lot: %v", domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete cheapest lot: %v", domain.ErrStorage, err)
	}
	if n == 0 {
		return domain.ErrLedgerEmpty
	}
	return nil
}

func (r *Repo) InsertPortfolio(ctx context.Context, snap model.PortfolioSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO "Portfolio" ("market", "timestamp", "btc", "eth", "curr_bid", "total_btc")
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.Market, snap.Timestamp, snap.Quote, snap.Base, snap.CurrBid, snap.TotalQuote)
	if err != nil {
		return fmt.Errorf("%w: insert portfolio: %v", domain.ErrStorage, err)
	}
	return nil
}

var _ port.Ledger = (*Repo)(nil)
var _ port.AuditLog = (*Repo)(nil)
