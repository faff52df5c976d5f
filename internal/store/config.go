package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string `yaml:"mode"`
	MetricsAddr string `yaml:"metrics_addr"`

	Broker struct {
		Primary  string `yaml:"primary"`
		Fallback string `yaml:"fallback"`
		Deriv    struct {
			AppID    int    `yaml:"app_id"`
			Endpoint string `yaml:"endpoint"`
		} `yaml:"deriv"`
		Kite struct {
			Exchange string `yaml:"exchange"`
		} `yaml:"kite"`
	} `yaml:"broker"`

	Indicators struct {
		RSIPeriod int     `yaml:"rsi_period"`
		ATRPeriod int     `yaml:"atr_period"`
		ADXPeriod int     `yaml:"adx_period"`
		BBPeriod  int     `yaml:"bb_period"`
		BBStdDev  float64 `yaml:"bb_stddev"`
	} `yaml:"indicators"`

	Risk struct {
		RiskPercent float64 `yaml:"risk_percent"`
		RRRatio     float64 `yaml:"rr_ratio"`
		MinStake    float64 `yaml:"min_stake"`
	} `yaml:"risk"`

	Sentiment struct {
		Enabled      bool    `yaml:"enabled"`
		Threshold    float64 `yaml:"threshold"`
		CacheMinutes int     `yaml:"cache_minutes"`
	} `yaml:"sentiment"`

	Scan struct {
		IntervalSeconds     int `yaml:"interval_seconds"`
		GranularitySeconds  int `yaml:"granularity_seconds"`
		MinCandles          int `yaml:"min_candles"`
		CooldownMinutes     int `yaml:"cooldown_minutes"`
		ErrorBackoffSeconds int `yaml:"error_backoff_seconds"`
	} `yaml:"scan"`

	Symbols []string `yaml:"symbols"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Broker.Primary != "DERIV" && c.Broker.Primary != "KITE" {
		return fmt.Errorf("invalid broker.primary '%s': must be 'DERIV' or 'KITE'", c.Broker.Primary)
	}
	if c.Broker.Fallback != "" && c.Broker.Fallback != "DERIV" && c.Broker.Fallback != "KITE" {
		return fmt.Errorf("invalid broker.fallback '%s': must be 'DERIV', 'KITE' or empty", c.Broker.Fallback)
	}
	if c.Broker.Fallback == c.Broker.Primary {
		return errors.New("broker.fallback must differ from broker.primary")
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 1 {
		return fmt.Errorf("risk.risk_percent must be in (0,1], got %.4f", c.Risk.RiskPercent)
	}
	if c.Risk.RRRatio <= 0 {
		return fmt.Errorf("risk.rr_ratio must be positive, got %.2f", c.Risk.RRRatio)
	}
	if c.Sentiment.Threshold < 0 || c.Sentiment.Threshold > 1 {
		return fmt.Errorf("sentiment.threshold must be in [0,1], got %.2f", c.Sentiment.Threshold)
	}
	if c.Scan.MinCandles < 2 {
		return fmt.Errorf("scan.min_candles must be at least 2, got %d", c.Scan.MinCandles)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Broker.Primary == "" {
		c.Broker.Primary = "DERIV"
	}
	if c.Broker.Deriv.AppID == 0 {
		c.Broker.Deriv.AppID = 1089
	}
	if c.Broker.Deriv.Endpoint == "" {
		c.Broker.Deriv.Endpoint = "wss://ws.derivws.com/websockets/v3"
	}
	if c.Broker.Kite.Exchange == "" {
		c.Broker.Kite.Exchange = "NSE"
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.ATRPeriod == 0 {
		c.Indicators.ATRPeriod = 14
	}
	if c.Indicators.ADXPeriod == 0 {
		c.Indicators.ADXPeriod = 14
	}
	if c.Indicators.BBPeriod == 0 {
		c.Indicators.BBPeriod = 20
	}
	if c.Indicators.BBStdDev == 0 {
		c.Indicators.BBStdDev = 2.0
	}
	if c.Risk.RiskPercent == 0 {
		c.Risk.RiskPercent = 0.01
	}
	if c.Risk.RRRatio == 0 {
		c.Risk.RRRatio = 3.0
	}
	if c.Risk.MinStake == 0 {
		c.Risk.MinStake = 1.0
	}
	if c.Sentiment.Threshold == 0 {
		c.Sentiment.Threshold = 0.5
	}
	if c.Sentiment.CacheMinutes == 0 {
		c.Sentiment.CacheMinutes = 60
	}
	if c.Scan.IntervalSeconds == 0 {
		c.Scan.IntervalSeconds = 60
	}
	if c.Scan.GranularitySeconds == 0 {
		c.Scan.GranularitySeconds = 900
	}
	if c.Scan.MinCandles == 0 {
		c.Scan.MinCandles = 60
	}
	if c.Scan.CooldownMinutes == 0 {
		c.Scan.CooldownMinutes = 15
	}
	if c.Scan.ErrorBackoffSeconds == 0 {
		c.Scan.ErrorBackoffSeconds = 10
	}
}
