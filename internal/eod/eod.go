package eod

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"hybrid-trading-bot/internal/types"
)

// Summarizes the day's JSONL trade log into a per-symbol CSV and overall
// performance metrics. The JSONL files themselves are never rewritten.

type aggRow struct {
	Symbol      string
	Trades      int
	StakeVolume float64
	Won         int
	Lost        int
	Cancelled   int
	NetPL       float64
}

// Metrics mirrors the operator-facing performance summary.
type Metrics struct {
	TotalClosed int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"`
	TotalProfit float64 `json:"total_profit"`
	OpenTrades  int     `json:"open_trades"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func todaysTradeFile(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func eodCSVPath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "eod", d+".csv")
}

// ShouldRunNow reports whether the daily summary is due: past 22:00 UTC
// and not yet written for today.
func ShouldRunNow() (bool, error) {
	now := time.Now().UTC()
	if now.Hour() < 22 {
		return false, nil
	}
	if _, err := os.Stat(eodCSVPath(now)); err == nil {
		return false, nil
	}
	return true, nil
}

// SummarizeToday writes today's summary CSV and returns its path.
// Returns "" when there were no trades today.
func SummarizeToday() (string, error) {
	return SummarizeDay(time.Now().UTC())
}

func SummarizeDay(t time.Time) (string, error) {
	records, err := readDay(t)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	aggs := map[string]*aggRow{}
	for _, r := range records {
		row := aggs[r.Symbol]
		if row == nil {
			row = &aggRow{Symbol: r.Symbol}
			aggs[r.Symbol] = row
		}
		row.Trades++
		row.StakeVolume += r.Stake
		switch r.Status {
		case types.TradeWon:
			row.Won++
		case types.TradeLost:
			row.Lost++
		case types.TradeCancelled:
			row.Cancelled++
		}
		if r.ProfitLoss != nil {
			row.NetPL += *r.ProfitLoss
		}
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := eodCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	headers := []string{"symbol", "trades", "stake_volume", "won", "lost", "cancelled", "net_pl"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	for _, k := range keys {
		r := aggs[k]
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Trades),
			fmt.Sprintf("%.2f", r.StakeVolume),
			strconv.Itoa(r.Won),
			strconv.Itoa(r.Lost),
			strconv.Itoa(r.Cancelled),
			fmt.Sprintf("%.2f", r.NetPL),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	return outPath, nil
}

// Performance computes overall metrics for a slice of trade records.
func Performance(records []types.TradeRecord) Metrics {
	var m Metrics
	won := 0
	for _, r := range records {
		if !r.Closed() {
			m.OpenTrades++
			continue
		}
		if r.Status == types.TradeCancelled {
			continue
		}
		m.TotalClosed++
		if r.Status == types.TradeWon {
			won++
		}
		if r.ProfitLoss != nil {
			m.TotalProfit += *r.ProfitLoss
		}
	}
	if m.TotalClosed > 0 {
		m.WinRate = float64(won) / float64(m.TotalClosed)
	}
	return m
}

func readDay(t time.Time) ([]types.TradeRecord, error) {
	inPath := todaysTradeFile(t)
	if _, err := os.Stat(inPath); err != nil {
		return nil, nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Later lines for the same record id supersede earlier ones.
	order := []string{}
	latest := map[string]types.TradeRecord{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r types.TradeRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		if _, seen := latest[r.ID]; !seen {
			order = append(order, r.ID)
		}
		latest[r.ID] = r
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	records := make([]types.TradeRecord, 0, len(order))
	for _, id := range order {
		records = append(records, latest[id])
	}
	return records, nil
}
