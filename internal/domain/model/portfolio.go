package model

// PortfolioSnapshot is an append-only audit record written once per cycle.
// TotalQuote values the whole account in the quote currency
// (quote + base * bid); it has no control-flow role.
type PortfolioSnapshot struct {
	Market     string
	Timestamp  int64 // unix ms, primary key
	Quote      float64
	Base       float64
	CurrBid    float64
	TotalQuote float64
}
