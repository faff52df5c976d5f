package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hybrid-trading-bot/internal/types"
)

var mu sync.Mutex

// SignalEntry is one evaluated signal, logged alongside the trade file.
type SignalEntry struct {
	Time       string             `json:"time"`
	Symbol     string             `json:"symbol"`
	Direction  string             `json:"direction"`
	Patterns   []string           `json:"patterns"`
	Sentiment  float64            `json:"sentiment"`
	Indicators map[string]float64 `json:"indicators"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func signalsFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "signals", d+".txt")
}

// AppendTrade writes one trade record as a single JSON line. The file is
// append-only and never rewritten; status transitions append a new line
// for the same record id.
func AppendTrade(r types.TradeRecord) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	if r.Timestamp == "" {
		r.Timestamp = now.Format(time.RFC3339)
	}
	return appendLine(dailyFilepath(now), r)
}

// AppendSignal writes one evaluated signal as a single JSON line.
func AppendSignal(e SignalEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format(time.RFC3339)
	return appendLine(signalsFilepath(now), e)
}

func appendLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips log files older than retentionDays. 0 disables.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			// if a gz already exists, just remove the original .txt
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
