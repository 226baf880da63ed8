package domain

import "errors"

// ErrConnectivity covers network, timeout and auth failures against the exchange.
var ErrConnectivity = errors.New("exchange connectivity error")

// ErrOrderRejected means the exchange refused an order (balance, price or size).
var ErrOrderRejected = errors.New("order rejected by exchange")

// ErrStorage covers ledger and audit-log read/write failures.
var ErrStorage = errors.New("storage error")

// ErrInconsistentState flags events that contradict the ledger, e.g. a sell
// fill arriving while no lot is recorded.
var ErrInconsistentState = errors.New("inconsistent ledger state")

// ErrLedgerEmpty is returned by delete-cheapest when the market has no lots.
var ErrLedgerEmpty = errors.New("ledger empty")
