package types

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Bias is the coarse long-horizon directional view for a symbol.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// MarketData is the broker-agnostic live quote for one symbol.
type MarketData struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Ts     int64   `json:"ts"`
	Broker string  `json:"broker"`
}

// Snapshot annotates the most recent bar of an OHLC series with computed
// indicator values and named candlestick-pattern scores. Absent values
// (insufficient history) are NaN.
type Snapshot struct {
	RSI      float64
	ATR      float64
	ADX      float64
	BBMiddle float64
	BBUpper  float64
	BBLower  float64

	// Pattern scores follow the talib convention: positive = bullish,
	// negative = bearish, zero = pattern absent.
	Patterns map[string]float64
}

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderOpen     OrderStatus = "OPEN"
	OrderRejected OrderStatus = "REJECTED"
	OrderClosed   OrderStatus = "CLOSED"
)

// Order is the broker-facing request. ID is broker-assigned and is the
// only cross-reference a later CloseOrder may use.
type Order struct {
	ID         string      `json:"id,omitempty"`
	Symbol     string      `json:"symbol"`
	Direction  Direction   `json:"direction"`
	EntryPrice float64     `json:"entry_price"`
	Stake      float64     `json:"stake"`
	StopLoss   float64     `json:"stop_loss"`
	TakeProfit float64     `json:"take_profit"`
	Broker     string      `json:"broker"`
	Status     OrderStatus `json:"status"`
}

type TradeStatus string

const (
	TradeOpen      TradeStatus = "OPEN"
	TradeWon       TradeStatus = "WON"
	TradeLost      TradeStatus = "LOST"
	TradeCancelled TradeStatus = "CANCELLED"
)

// TradeRecord is an append-only fact created when a broker accepts an
// order. Exit fields are set iff Status is WON, LOST or CANCELLED.
type TradeRecord struct {
	ID            string      `json:"id"`
	Timestamp     string      `json:"timestamp"`
	Symbol        string      `json:"symbol"`
	Direction     Direction   `json:"direction"`
	EntryPrice    float64     `json:"entry_price"`
	Stake         float64     `json:"stake"`
	StopLoss      float64     `json:"stop_loss"`
	TakeProfit    float64     `json:"take_profit"`
	Status        TradeStatus `json:"status"`
	ExitPrice     *float64    `json:"exit_price"`
	ExitTimestamp *string     `json:"exit_timestamp"`
	ProfitLoss    *float64    `json:"profit_loss"`
	OrderID       string      `json:"order_id,omitempty"`
	Broker        string      `json:"broker,omitempty"`
}

// Closed reports whether the record reached a terminal status.
func (t TradeRecord) Closed() bool {
	return t.Status == TradeWon || t.Status == TradeLost || t.Status == TradeCancelled
}

// Signal is a positive evaluation result for one symbol.
type Signal struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Patterns  []string  `json:"patterns"`
	RSI       float64   `json:"rsi"`
	ADX       float64   `json:"adx"`
	Sentiment float64   `json:"sentiment"`
}
