package util

import (
	"fmt"
	"strings"
	"time"
)

// ValidateWalletName checks a wallet name (non-blank, length capped).
func ValidateWalletName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("wallet name is empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("wallet name too long, max 64 characters")
	}
	return nil
}

// ValidateDate checks date format (must be YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ParseOccurredAt parses a transaction timestamp in the formats the
// frontend sends, falling back to now.
func ParseOccurredAt(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
