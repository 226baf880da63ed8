package model

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type OrderType string

const (
	TypeMarket OrderType = "market"
	TypeLimit  OrderType = "limit"
)

// OrderIntent is a single order the strategy wants placed. Price is zero for
// market orders.
type OrderIntent struct {
	Market string
	Side   Side
	Type   OrderType
	Price  float64
	Size   float64
}

// Order is an exchange-side order as reported by the open-orders query.
type Order struct {
	ID     string
	Market string
	Side   Side
	Type   OrderType
	Price  float64
	Size   float64
	Status string
}

// OrderAck is the exchange's acknowledgement of a placed order.
type OrderAck struct {
	ID     string
	Status string
}
