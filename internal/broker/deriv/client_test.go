package deriv

import (
	"context"
	"testing"

	"hybrid-trading-bot/internal/types"
)

func TestAPIErrorClassification(t *testing.T) {
	cases := []struct {
		name     string
		msgType  string
		code     string
		wantConn bool
		wantRej  bool
	}{
		{"expired token", "authorize", "InvalidToken", true, false},
		{"auth required", "balance", "AuthorizationRequired", true, false},
		{"socket dropped", "ticks_history", "DisconnectedError", true, false},
		{"buy refused", "buy", "ContractBuyValidationError", false, true},
		{"proposal refused", "proposal", "OfferingsValidationError", false, true},
		{"sell refused", "sell", "InvalidSellContractProposal", false, true},
		{"transient", "ticks_history", "MarketIsClosed", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := apiErrToDomain(tc.msgType, &apiError{Code: tc.code, Message: "x"})
			if got := types.IsConnErr(err); got != tc.wantConn {
				t.Errorf("IsConnErr = %v, want %v", got, tc.wantConn)
			}
			if got := types.IsRejected(err); got != tc.wantRej {
				t.Errorf("IsRejected = %v, want %v", got, tc.wantRej)
			}
		})
	}
}

func TestCallWithoutConnection(t *testing.T) {
	c := newClient("wss://example.invalid/ws", "1089")
	err := c.call(context.Background(), map[string]any{"ping": 1}, nil)
	if !types.IsConnErr(err) {
		t.Fatalf("call on a closed client = %v, want *ConnError", err)
	}
}
