package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gridbot/internal/application/port"
	"gridbot/internal/domain"
	"gridbot/internal/domain/model"
)

// Repo is the postgres-backed ledger and audit log, for deployments where
// the bot shares a database server with other services. Same schema as the
// sqlite store.
type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS "Position" (
  market TEXT NOT NULL,
  price  DOUBLE PRECISION NOT NULL,
  size   DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (market, price)
);

CREATE TABLE IF NOT EXISTS "Portfolio" (
  market    TEXT NOT NULL,
  timestamp BIGINT NOT NULL,
  btc       DOUBLE PRECISION NULL,
  eth       DOUBLE PRECISION NULL,
  curr_bid  DOUBLE PRECISION NOT NULL,
  total_btc DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (timestamp)
);
`)
	return err
}

func (r *Repo) GetCheapestLot(ctx context.Context, market string) (*model.Lot, error) {
	var lot model.Lot
	err := r.db.QueryRowContext(ctx, `
		SELECT market, price, size FROM "Position"
		WHERE market = $1
		ORDER BY price ASC
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
		INSERT INTO "Position" (market, price, size)
		VALUES ($1, $2, $3)
		ON CONFLICT (market, price) DO UPDATE SET
		size = excluded.size
	`, market, price, size)
	if err != nil {
		return fmt.Errorf("%w: upsert lot: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *Repo) DeleteCheapestLot(ctx context.Context, market string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM "Position"
		WHERE market = $1 AND price = (
			SELECT MIN(price) FROM "Position" WHERE market = $1
		)
	`, market)
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
		INSERT INTO "Portfolio" (market, timestamp, btc, eth, curr_bid, total_btc)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, snap.Market, snap.Timestamp, snap.Quote, snap.Base, snap.CurrBid, snap.TotalQuote)
	if err != nil {
		return fmt.Errorf("%w: insert portfolio: %v", domain.ErrStorage, err)
	}
	return nil
}

var _ port.Ledger = (*Repo)(nil)
var _ port.AuditLog = (*Repo)(nil)
