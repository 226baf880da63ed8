package model

// Lot is an open buy position awaiting a matching sell, keyed by entry price.
// At most one lot exists per (market, price); a buy filling at an identical
// price overwrites the recorded size.
type Lot struct {
	Market string
	Price  float64
	Size   float64
}
