package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
symbols:
  - R_100
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Mode != "DRY_RUN" {
		t.Errorf("Mode = %q, want DRY_RUN default", cfg.Mode)
	}
	if cfg.Broker.Primary != "DERIV" {
		t.Errorf("Primary = %q, want DERIV default", cfg.Broker.Primary)
	}
	if cfg.Broker.Deriv.Endpoint != "wss://ws.derivws.com/websockets/v3" {
		t.Errorf("Endpoint = %q", cfg.Broker.Deriv.Endpoint)
	}
	if cfg.Risk.RiskPercent != 0.01 || cfg.Risk.RRRatio != 3.0 || cfg.Risk.MinStake != 1.0 {
		t.Errorf("risk defaults = %+v", cfg.Risk)
	}
	if cfg.Scan.GranularitySeconds != 900 || cfg.Scan.MinCandles != 60 || cfg.Scan.CooldownMinutes != 15 {
		t.Errorf("scan defaults = %+v", cfg.Scan)
	}
	if cfg.Indicators.RSIPeriod != 14 || cfg.Indicators.BBPeriod != 20 {
		t.Errorf("indicator defaults = %+v", cfg.Indicators)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
mode: LIVE
broker:
  primary: KITE
  fallback: DERIV
  kite:
    exchange: BSE
risk:
  risk_percent: 0.05
symbols:
  - INFY
  - TCS
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mode != "LIVE" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.Broker.Primary != "KITE" || cfg.Broker.Fallback != "DERIV" {
		t.Errorf("broker = %+v", cfg.Broker)
	}
	if cfg.Broker.Kite.Exchange != "BSE" {
		t.Errorf("Exchange = %q", cfg.Broker.Kite.Exchange)
	}
	if cfg.Risk.RiskPercent != 0.05 {
		t.Errorf("RiskPercent = %v", cfg.Risk.RiskPercent)
	}
	if len(cfg.Symbols) != 2 {
		t.Errorf("Symbols = %v", cfg.Symbols)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no symbols", `mode: DRY_RUN`},
		{"bad mode", "mode: PAPER\nsymbols: [R_100]"},
		{"bad primary", "broker:\n  primary: IBKR\nsymbols: [R_100]"},
		{"same fallback", "broker:\n  primary: DERIV\n  fallback: DERIV\nsymbols: [R_100]"},
		{"risk too high", "risk:\n  risk_percent: 1.5\nsymbols: [R_100]"},
		{"threshold out of range", "sentiment:\n  threshold: 2.0\nsymbols: [R_100]"},
		{"min_candles too small", "scan:\n  min_candles: 1\nsymbols: [R_100]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig accepted invalid config:\n%s", tc.body)
			}
		})
	}
}
