package enums

import (
	"fmt"
	"strings"
)

// TransactionMode is how a customer takes a drone: outright purchase or rental.
type TransactionMode string

const (
	TransactionModeBuy  TransactionMode = "buy"
	TransactionModeRent TransactionMode = "rent"
)

var validTransactionModes = []TransactionMode{
	TransactionModeBuy,
	TransactionModeRent,
}

// TransactionModes returns the known modes in canonical order.
func TransactionModes() []TransactionMode {
	out := make([]TransactionMode, len(validTransactionModes))
	copy(out, validTransactionModes)
	return out
}

// String implements fmt.Stringer.
func (m TransactionMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known TransactionMode.
func (m TransactionMode) IsValid() bool {
	for _, candidate := range validTransactionModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseTransactionMode converts raw input into a TransactionMode. Input is
// trimmed and compared case-insensitively.
func ParseTransactionMode(value string) (TransactionMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validTransactionModes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction mode %q", value)
}
