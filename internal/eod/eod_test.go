package eod

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"hybrid-trading-bot/internal/tradelog"
	"hybrid-trading-bot/internal/types"
)

func appendOpenAndSettled(t *testing.T) {
	t.Helper()

	open := types.TradeRecord{ID: "A", Symbol: "R_100", Direction: types.Buy, Stake: 10, StopLoss: 10, TakeProfit: 30, Status: types.TradeOpen}
	if err := tradelog.AppendTrade(open); err != nil {
		t.Fatal(err)
	}

	exit := 130.0
	pl := 30.0
	ts := time.Now().UTC().Format(time.RFC3339)
	won := open
	won.Status = types.TradeWon
	won.ExitPrice = &exit
	won.ExitTimestamp = &ts
	won.ProfitLoss = &pl
	if err := tradelog.AppendTrade(won); err != nil {
		t.Fatal(err)
	}

	lostPL := -5.0
	lost := types.TradeRecord{ID: "B", Symbol: "R_50", Direction: types.Sell, Stake: 5, StopLoss: 5, TakeProfit: 15, Status: types.TradeLost, ExitPrice: &exit, ExitTimestamp: &ts, ProfitLoss: &lostPL}
	if err := tradelog.AppendTrade(lost); err != nil {
		t.Fatal(err)
	}
}

func TestSummarizeDayKeepsLatestTransition(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	appendOpenAndSettled(t)

	path, err := SummarizeDay(time.Now().UTC())
	if err != nil {
		t.Fatalf("SummarizeDay: %v", err)
	}
	if path == "" {
		t.Fatal("no summary written despite trades")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + two symbols, sorted
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "R_100" || rows[2][0] != "R_50" {
		t.Errorf("symbol order = %v / %v", rows[1][0], rows[2][0])
	}
	// Record A appears twice in the log but must count once, as WON.
	if rows[1][1] != "1" || rows[1][3] != "1" {
		t.Errorf("R_100 row = %v, want 1 trade / 1 won", rows[1])
	}
	if rows[2][4] != "1" {
		t.Errorf("R_50 row = %v, want 1 lost", rows[2])
	}
}

func TestSummarizeDayEmpty(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	path, err := SummarizeDay(time.Now().UTC())
	if err != nil {
		t.Fatalf("SummarizeDay: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for a day without trades", path)
	}
}

func TestPerformance(t *testing.T) {
	win := 30.0
	loss := -10.0
	records := []types.TradeRecord{
		{ID: "1", Status: types.TradeWon, ProfitLoss: &win},
		{ID: "2", Status: types.TradeLost, ProfitLoss: &loss},
		{ID: "3", Status: types.TradeWon, ProfitLoss: &win},
		{ID: "4", Status: types.TradeOpen},
		{ID: "5", Status: types.TradeCancelled},
	}

	m := Performance(records)
	if m.TotalClosed != 3 {
		t.Errorf("TotalClosed = %d, want 3 (cancelled excluded)", m.TotalClosed)
	}
	if m.OpenTrades != 1 {
		t.Errorf("OpenTrades = %d, want 1", m.OpenTrades)
	}
	if m.WinRate < 0.66 || m.WinRate > 0.67 {
		t.Errorf("WinRate = %v, want 2/3", m.WinRate)
	}
	if m.TotalProfit != 50 {
		t.Errorf("TotalProfit = %v, want 50", m.TotalProfit)
	}
}
