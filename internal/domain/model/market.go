package model

// MarketSnapshot is the ticker state a cycle quotes against.
type MarketSnapshot struct {
	Market string
	Last   float64
	Bid    float64
	Ask    float64
}

// Balance is a single coin's account balance.
type Balance struct {
	Coin  string
	Total float64
	Free  float64
}
