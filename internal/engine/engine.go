// Package engine drives the evaluate->size->execute pipeline across the
// configured symbols, one sweep per scan interval.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/metrics"
	"hybrid-trading-bot/internal/store"
	"hybrid-trading-bot/internal/ta"
	"hybrid-trading-bot/internal/tradelog"
	"hybrid-trading-bot/internal/types"
)

// monthSeconds is the candle width used for the long-horizon bias.
const monthSeconds = 2592000

// symbolState is the lazily-created per-symbol engine state.
type symbolState struct {
	bias        types.Bias
	biasKnown   bool
	stake       float64
	stakeKnown  bool
	lastTradeAt time.Time
}

type Engine struct {
	cfg       *store.Config
	brk       interfaces.Broker
	sentiment interfaces.SentimentProvider
	activeFn  func() string

	mu           sync.Mutex
	syms         map[string]*symbolState
	open         map[string]*types.TradeRecord // record id -> open trade
	lastBalance  float64
	balanceKnown bool

	events chan interfaces.Event
}

var _ interfaces.Engine = (*Engine)(nil)

// New builds the engine. activeFn reports the name of the broker
// currently serving calls (the hybrid composite's Active); it may be
// nil, in which case the broker's own name is used.
func New(cfg *store.Config, brk interfaces.Broker, sentiment interfaces.SentimentProvider, activeFn func() string) *Engine {
	if activeFn == nil {
		activeFn = brk.Name
	}
	return &Engine{
		cfg:       cfg,
		brk:       brk,
		sentiment: sentiment,
		activeFn:  activeFn,
		syms:      map[string]*symbolState{},
		open:      map[string]*types.TradeRecord{},
		events:    make(chan interfaces.Event, 64),
	}
}

// Run scans every configured symbol once per interval until ctx ends.
// Everything happens on this one goroutine; symbol N+1 never starts
// before symbol N's attempt has completed.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Duration(e.cfg.Scan.IntervalSeconds) * time.Second
	backoff := time.Duration(e.cfg.Scan.ErrorBackoffSeconds) * time.Second

	logger.Info(ctx, "Scan loop started",
		"symbols", e.cfg.Symbols,
		"interval", interval.String())

	for {
		cycleErr := e.sweep(ctx)
		metrics.ScanCycles.Inc()

		sleep := interval
		if cycleErr != nil && !errors.Is(cycleErr, context.Canceled) {
			logger.Warn(ctx, "Scan cycle failed, backing off", "error", cycleErr.Error())
			sleep = backoff
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Scan loop stopped")
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// sweep runs one pass over the symbols in configured order. A
// per-symbol failure is logged and the sweep continues; only a lost
// broker session aborts the cycle after one reconnect attempt.
func (e *Engine) sweep(ctx context.Context) error {
	for _, symbol := range e.cfg.Symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err := e.Step(ctx, symbol)
		if err == nil {
			continue
		}
		if types.IsConnErr(err) {
			e.reconnect(ctx)
			return err
		}
		logger.ErrorWithErr(ctx, "Symbol step failed", err, "symbol", symbol)
	}
	return nil
}

// Step evaluates one symbol: bias gate, indicator snapshot, signal
// gates, sizing, then execution. Missing history is a skip, not an
// error that disturbs the sweep.
func (e *Engine) Step(ctx context.Context, symbol string) (*types.TradeRecord, error) {
	st := e.state(symbol)

	if cool := e.cooldownLeft(st); cool > 0 {
		logger.Debug(ctx, "Symbol in cooldown", "symbol", symbol, "remaining", cool.String())
		return nil, nil
	}

	bias := e.biasFor(ctx, symbol, st)
	if bias == types.BiasNeutral {
		logger.Debug(ctx, "Neutral bias, skipping", "symbol", symbol)
		return nil, nil
	}

	candles, err := e.brk.History(ctx, symbol, e.cfg.Scan.GranularitySeconds, e.cfg.Scan.MinCandles)
	if err != nil {
		if errors.Is(err, types.ErrInsufficientData) {
			logger.Debug(ctx, "No candle data", "symbol", symbol)
			return nil, nil
		}
		return nil, err
	}
	if len(candles) < e.cfg.Scan.MinCandles {
		logger.Debug(ctx, "Insufficient candle history",
			"symbol", symbol,
			"received", len(candles),
			"required", e.cfg.Scan.MinCandles)
		return nil, nil
	}

	snap, err := ta.Annotate(candles, ta.Params{
		RSIPeriod: e.cfg.Indicators.RSIPeriod,
		ATRPeriod: e.cfg.Indicators.ATRPeriod,
		ADXPeriod: e.cfg.Indicators.ADXPeriod,
		BBPeriod:  e.cfg.Indicators.BBPeriod,
		BBStdDev:  e.cfg.Indicators.BBStdDev,
	})
	if err != nil {
		if errors.Is(err, types.ErrInsufficientData) {
			return nil, nil
		}
		return nil, err
	}

	sentiment := 0.0
	if e.sentiment != nil && e.cfg.Sentiment.Enabled {
		sentiment = e.sentiment.MarketSentiment(ctx)
		metrics.Sentiment.Set(sentiment)
	}

	sig := evaluate(symbol, bias, snap, sentiment, e.cfg.Sentiment.Threshold)
	if sig == nil {
		logger.Debug(ctx, "No confluence", "symbol", symbol, "bias", string(bias), "rsi", snap.RSI, "adx", snap.ADX)
		return nil, nil
	}

	logger.Signal(ctx, symbol, string(sig.Direction),
		"patterns", sig.Patterns,
		"rsi", sig.RSI,
		"adx", sig.ADX,
		"sentiment", sig.Sentiment)
	metrics.SignalsDetected.WithLabelValues(symbol, string(sig.Direction)).Inc()
	e.emit(interfaces.Event{Kind: interfaces.EventSignal, Symbol: symbol, Signal: sig})

	if err := tradelog.AppendSignal(tradelog.SignalEntry{
		Symbol:    symbol,
		Direction: string(sig.Direction),
		Patterns:  sig.Patterns,
		Sentiment: sig.Sentiment,
		Indicators: map[string]float64{
			"RSI": snap.RSI,
			"ADX": snap.ADX,
			"ATR": snap.ATR,
		},
	}); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist signal", err, "symbol", symbol)
	}

	stake := e.stakeFor(ctx, symbol, st)
	return e.execute(ctx, symbol, sig.Direction, stake, st)
}

// Warmup primes stake and bias for every configured symbol before the
// first sweep, pacing requests so session setup does not hammer the
// broker.
func (e *Engine) Warmup(ctx context.Context) {
	for i, symbol := range e.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			time.Sleep(500 * time.Millisecond)
		}
		st := e.state(symbol)
		bias := e.biasFor(ctx, symbol, st)
		stake := e.stakeFor(ctx, symbol, st)
		logger.Info(ctx, "Symbol warmed up",
			"symbol", symbol,
			"bias", string(bias),
			"stake", stake)
	}
}

func (e *Engine) Status(ctx context.Context) interfaces.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := interfaces.Status{
		ActiveBroker: e.activeFn(),
		Balance:      e.lastBalance,
		BalanceKnown: e.balanceKnown,
		OpenTrades:   len(e.open),
		Bias:         map[string]string{},
		Stakes:       map[string]float64{},
	}
	s.Connected = s.ActiveBroker != ""
	for sym, st := range e.syms {
		if st.biasKnown {
			s.Bias[sym] = string(st.bias)
		}
		if st.stakeKnown {
			s.Stakes[sym] = st.stake
		}
	}
	return s
}

// Subscribe returns the engine event stream. Slow consumers lose
// events; the scan loop never blocks on delivery.
func (e *Engine) Subscribe() <-chan interfaces.Event {
	return e.events
}

func (e *Engine) emit(ev interfaces.Event) {
	select {
	case e.events <- ev:
	default:
	}
}

func (e *Engine) state(symbol string) *symbolState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.syms[symbol]
	if st == nil {
		st = &symbolState{bias: types.BiasNeutral}
		e.syms[symbol] = st
	}
	return st
}

func (e *Engine) cooldownLeft(st *symbolState) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st.lastTradeAt.IsZero() {
		return 0
	}
	window := time.Duration(e.cfg.Scan.CooldownMinutes) * time.Minute
	left := window - time.Since(st.lastTradeAt)
	if left < 0 {
		return 0
	}
	return left
}

// reconnect tries one fresh Connect after a lost session and reports a
// broker switch when the active name changes. The dropped attempt is
// never retried in the same cycle.
func (e *Engine) reconnect(ctx context.Context) {
	before := e.activeFn()
	logger.Warn(ctx, "Broker session lost, reconnecting", "broker", before)

	if err := e.brk.Connect(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Reconnect failed", err)
		return
	}
	after := e.activeFn()
	if after != before {
		metrics.BrokerSwitches.Inc()
		logger.Warn(ctx, "Active broker switched", "from", before, "to", after)
		e.emit(interfaces.Event{Kind: interfaces.EventBrokerSwitch, Broker: after, Reason: "reconnect"})
	}
}
