package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hybrid-trading-bot/internal/types"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestAppendTradeWritesOneJSONLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	rec := types.TradeRecord{
		ID:         "01TEST",
		Symbol:     "R_100",
		Direction:  types.Buy,
		EntryPrice: 123.45,
		Stake:      10,
		StopLoss:   10,
		TakeProfit: 30,
		Status:     types.TradeOpen,
		OrderID:    "D-1",
		Broker:     "DERIV",
	}
	if err := AppendTrade(rec); err != nil {
		t.Fatalf("AppendTrade: %v", err)
	}

	day := time.Now().UTC().Format("2006-01-02")
	lines := readLines(t, filepath.Join(dir, day+".txt"))
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}

	var got types.TradeRecord
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "01TEST" || got.Symbol != "R_100" || got.Status != types.TradeOpen {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.Timestamp == "" {
		t.Error("empty timestamp not defaulted")
	}
	if _, err := time.Parse(time.RFC3339, got.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", got.Timestamp, err)
	}
}

func TestAppendTradeTransitionsAppend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	rec := types.TradeRecord{ID: "01TEST", Symbol: "R_100", Status: types.TradeOpen}
	if err := AppendTrade(rec); err != nil {
		t.Fatalf("AppendTrade open: %v", err)
	}

	exit := 130.0
	pl := 30.0
	ts := time.Now().UTC().Format(time.RFC3339)
	rec.Status = types.TradeWon
	rec.ExitPrice = &exit
	rec.ExitTimestamp = &ts
	rec.ProfitLoss = &pl
	if err := AppendTrade(rec); err != nil {
		t.Fatalf("AppendTrade settle: %v", err)
	}

	day := time.Now().UTC().Format("2006-01-02")
	lines := readLines(t, filepath.Join(dir, day+".txt"))
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 (append-only transitions)", len(lines))
	}

	var last types.TradeRecord
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if last.Status != types.TradeWon || last.ExitPrice == nil || *last.ExitPrice != 130 {
		t.Errorf("settled line mismatch: %+v", last)
	}
}

func TestAppendSignal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	entry := SignalEntry{
		Symbol:     "R_100",
		Direction:  "BUY",
		Patterns:   []string{"Hammer"},
		Sentiment:  0.5,
		Indicators: map[string]float64{"RSI": 55},
	}
	if err := AppendSignal(entry); err != nil {
		t.Fatalf("AppendSignal: %v", err)
	}

	day := time.Now().UTC().Format("2006-01-02")
	lines := readLines(t, filepath.Join(dir, "signals", day+".txt"))
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	var got SignalEntry
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Time == "" {
		t.Error("signal entry missing timestamp")
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	old := filepath.Join(dir, "2020-01-01.txt")
	if err := os.WriteFile(old, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	recent := filepath.Join(dir, "recent.txt")
	if err := os.WriteFile(recent, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log not removed after compression")
	}
	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Errorf("compressed log missing: %v", err)
	}
	if _, err := os.Stat(recent); err != nil {
		t.Errorf("recent log should be untouched: %v", err)
	}

	// retention 0 disables the pass entirely
	if err := CompressOlder(0); err != nil {
		t.Errorf("CompressOlder(0) = %v, want nil", err)
	}
}
