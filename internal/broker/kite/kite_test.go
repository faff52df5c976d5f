package kite

import (
	"testing"
	"time"

	"hybrid-trading-bot/internal/types"
)

func TestIntervalFor(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
		ok      bool
	}{
		{60, "minute", true},
		{300, "5minute", true},
		{900, "15minute", true},
		{3600, "60minute", true},
		{86400, "day", true},
		{2592000, "day", true},
		{45, "", false},
		{7200, "", false},
	}
	for _, tc := range cases {
		got, ok := intervalFor(tc.seconds)
		if got != tc.want || ok != tc.ok {
			t.Errorf("intervalFor(%d) = (%q, %v), want (%q, %v)", tc.seconds, got, ok, tc.want, tc.ok)
		}
	}
}

func TestQuantityFor(t *testing.T) {
	if got := quantityFor(1000, 250); got != 4 {
		t.Errorf("quantityFor(1000, 250) = %d, want 4", got)
	}
	if got := quantityFor(100, 250); got != 0 {
		t.Errorf("quantityFor(100, 250) = %d, want 0", got)
	}
	if got := quantityFor(100, 0); got != 0 {
		t.Errorf("quantityFor with zero price = %d, want 0", got)
	}
}

func TestAggregateMonthly(t *testing.T) {
	const day = int64(86400)
	width := 30 * day
	start := (time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC).Unix() / width) * width

	var daily []types.Candle
	for i := int64(0); i < 60; i++ {
		base := 100 + float64(i)
		daily = append(daily, types.Candle{
			Ts: start + i*day, Open: base, High: base + 2, Low: base - 2, Close: base + 1, Vol: 10,
		})
	}

	monthly := aggregate(daily, width)
	if len(monthly) != 2 {
		t.Fatalf("buckets = %d, want 2", len(monthly))
	}

	first := monthly[0]
	if first.Open != 100 {
		t.Errorf("first bucket Open = %v, want first day's open", first.Open)
	}
	if first.Close != 130 {
		t.Errorf("first bucket Close = %v, want last day's close 130", first.Close)
	}
	if first.High != 131 || first.Low != 98 {
		t.Errorf("first bucket range = %v..%v, want 98..131", first.Low, first.High)
	}
	if first.Vol != 300 {
		t.Errorf("first bucket Vol = %v, want 300", first.Vol)
	}
}

func TestWrapErrClassifiesTokenFailure(t *testing.T) {
	err := wrapErr("margins", errTokenException{})
	if !types.IsConnErr(err) {
		t.Fatalf("token failure = %v, want *ConnError", err)
	}
	err = wrapErr("margins", errPlain{})
	if types.IsConnErr(err) {
		t.Fatal("plain failure misclassified as connection loss")
	}
}

type errTokenException struct{}

func (errTokenException) Error() string { return "TokenException: invalid session" }

type errPlain struct{}

func (errPlain) Error() string { return "upstream timeout" }
