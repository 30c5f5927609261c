// Package models defines data structures for Folio
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TransactionType categorizes portfolio transactions. Wire values are
// capitalized strings to match the transaction API contract.
type TransactionType string

const (
	TransactionBuy      TransactionType = "Buy"
	TransactionSell     TransactionType = "Sell"
	TransactionDividend TransactionType = "Dividend"
	TransactionSplit    TransactionType = "Split"
)

// ParseTransactionType normalizes a wire string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return TransactionBuy, nil
	case "sell":
		return TransactionSell, nil
	case "dividend":
		return TransactionDividend, nil
	case "split":
		return TransactionSplit, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// UnixTime is a time.Time that marshals as Unix seconds, matching the
// transaction API wire format. Unmarshal accepts Unix seconds or RFC3339.
type UnixTime struct {
	time.Time
}

// NewUnixTime wraps a time.Time.
func NewUnixTime(t time.Time) UnixTime {
	return UnixTime{Time: t}
}

// MarshalJSON renders the time as Unix seconds.
func (u UnixTime) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(u.Unix(), 10)), nil
}

// UnmarshalJSON accepts Unix seconds (number) or an RFC3339 string.
func (u *UnixTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "0" {
		u.Time = time.Time{}
		return nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		u.Time = time.Unix(sec, 0).UTC()
		return nil
	}
	t, err := time.Parse(`"`+time.RFC3339+`"`, s)
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", s, err)
	}
	u.Time = t
	return nil
}

// Transaction represents a recorded portfolio transaction. Immutable once
// recorded except via explicit update; ordering by date matters for
// average-cost computation.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"-"`
	Ticker       string          `json:"ticker"`
	CompanyName  string          `json:"companyName,omitempty"`
	SecurityType string          `json:"securityType,omitempty"`
	Date         UnixTime        `json:"date"`
	Type         TransactionType `json:"type"`
	Shares       float64         `json:"shares"`
	SharePrice   float64         `json:"sharePrice"`
	Fees         float64         `json:"fees"` // brokerage fee as a percentage of the gross trade value
	TotalAmount  float64         `json:"totalAmount"`
	Tax          float64         `json:"tax,omitempty"`
	SplitRatio   float64         `json:"splitRatio,omitempty"` // Split rows only; e.g. 2 for a 2-for-1 split
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
}

// Validate checks structural invariants on a transaction before it is stored.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Ticker) == "" {
		return fmt.Errorf("ticker is required")
	}
	parsed, err := ParseTransactionType(string(t.Type))
	if err != nil {
		return err
	}
	t.Type = parsed
	switch t.Type {
	case TransactionBuy, TransactionSell:
		if t.Shares <= 0 {
			return fmt.Errorf("%s requires shares > 0", strings.ToLower(string(t.Type)))
		}
		if t.SharePrice < 0 {
			return fmt.Errorf("share price cannot be negative")
		}
	case TransactionSplit:
		if t.SplitRatio <= 0 {
			return fmt.Errorf("split requires a positive ratio")
		}
	}
	if t.Fees < 0 {
		return fmt.Errorf("fees cannot be negative")
	}
	return nil
}

// DefaultSecurityType is the fallback asset class when a transaction omits
// or misreports its security type.
const DefaultSecurityType = "Stock"

// NormalizeSecurityType maps empty/unknown security type strings to the
// default rather than failing.
func NormalizeSecurityType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSecurityType
	}
	return s
}
