package kite

import (
	"context"
	"fmt"
	"sync"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"hybrid-trading-bot/internal/logger"
)

// instrumentMap caches the tradingsymbol -> instrument token mapping
// for one exchange. The dump is large, so it is fetched once per
// session and reused for every history lookup.
type instrumentMap struct {
	mu       sync.RWMutex
	exchange string
	tokens   map[string]int
	symbols  []string
}

func newInstrumentMap(exchange string) *instrumentMap {
	return &instrumentMap{exchange: exchange, tokens: map[string]int{}}
}

func (m *instrumentMap) load(ctx context.Context, kc *kiteconnect.Client) error {
	instruments, err := kc.GetInstruments()
	if err != nil {
		return fmt.Errorf("fetch instruments: %w", err)
	}
	tokens := make(map[string]int)
	symbols := make([]string, 0, 256)
	for _, in := range instruments {
		if in.Exchange != m.exchange {
			continue
		}
		tokens[in.Tradingsymbol] = in.InstrumentToken
		symbols = append(symbols, in.Tradingsymbol)
	}
	m.mu.Lock()
	m.tokens = tokens
	m.symbols = symbols
	m.mu.Unlock()
	logger.Info(ctx, "kite instrument map loaded",
		"exchange", m.exchange,
		"count", len(tokens))
	return nil
}

func (m *instrumentMap) token(symbol string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[symbol]
	return t, ok
}

func (m *instrumentMap) list() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out
}
