package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnixTimeMarshalsAsSeconds(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	data, err := json.Marshal(UnixTime{Time: date})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "1710460800" {
		t.Errorf("expected unix seconds, got %s", data)
	}
}

func TestUnixTimeUnmarshalAcceptsSecondsAndRFC3339(t *testing.T) {
	var fromSeconds UnixTime
	if err := json.Unmarshal([]byte("1710460800"), &fromSeconds); err != nil {
		t.Fatalf("unmarshal seconds: %v", err)
	}

	var fromString UnixTime
	if err := json.Unmarshal([]byte(`"2024-03-15T00:00:00Z"`), &fromString); err != nil {
		t.Fatalf("unmarshal RFC3339: %v", err)
	}

	if !fromSeconds.Time.Equal(fromString.Time) {
		t.Errorf("representations disagree: %v vs %v", fromSeconds.Time, fromString.Time)
	}

	var bad UnixTime
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestParseTransactionTypeNormalizesCase(t *testing.T) {
	for _, input := range []string{"buy", "Buy", " BUY "} {
		parsed, err := ParseTransactionType(input)
		if err != nil {
			t.Errorf("%q: unexpected error %v", input, err)
		}
		if parsed != TransactionBuy {
			t.Errorf("%q: expected Buy, got %s", input, parsed)
		}
	}
	if _, err := ParseTransactionType("short"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{Ticker: "VAS.AX", Type: TransactionBuy, Shares: 10, SharePrice: 100}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid transaction rejected: %v", err)
	}

	lower := Transaction{Ticker: "VAS.AX", Type: "sell", Shares: 1, SharePrice: 50}
	if err := lower.Validate(); err != nil {
		t.Errorf("lowercase type rejected: %v", err)
	}
	if lower.Type != TransactionSell {
		t.Errorf("expected type normalized to Sell, got %s", lower.Type)
	}

	cases := []Transaction{
		{Type: TransactionBuy, Shares: 10, SharePrice: 100},                       // no ticker
		{Ticker: "VAS.AX", Type: TransactionBuy, Shares: 0, SharePrice: 100},      // zero shares
		{Ticker: "VAS.AX", Type: TransactionBuy, Shares: 10, SharePrice: -1},      // negative price
		{Ticker: "VAS.AX", Type: TransactionSplit},                                // missing ratio
		{Ticker: "VAS.AX", Type: TransactionBuy, Shares: 1, SharePrice: 1, Fees: -1}, // negative fees
	}
	for i, tc := range cases {
		if err := tc.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestStatusForDifference(t *testing.T) {
	cases := []struct {
		diff float64
		want RebalancingStatus
	}{
		{0, StatusBalanced},
		{0.1, StatusBalanced},
		{-0.1, StatusBalanced},
		{0.2, StatusOverweight},
		{-0.2, StatusUnderweight},
		{15, StatusOverweight},
	}
	for _, tc := range cases {
		if got := StatusForDifference(tc.diff); got != tc.want {
			t.Errorf("diff %v: expected %s, got %s", tc.diff, tc.want, got)
		}
	}
}

func TestNormalizeSecurityType(t *testing.T) {
	if got := NormalizeSecurityType(""); got != DefaultSecurityType {
		t.Errorf("empty type: expected %s, got %s", DefaultSecurityType, got)
	}
	if got := NormalizeSecurityType(" ETF "); got != "ETF" {
		t.Errorf("expected trimmed passthrough, got %q", got)
	}
}
