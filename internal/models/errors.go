package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both an unresolvable query and an absent record.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when creating a coin whose canonical id
	// is already tracked.
	ErrConflict = errors.New("already exists")

	// ErrUnavailable is returned when the market data provider cannot
	// be reached or returns garbage.
	ErrUnavailable = errors.New("market data provider unavailable")
)

// CoinOption is one disambiguation candidate for an ambiguous symbol.
type CoinOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AmbiguousError reports a ticker symbol shared by two or more coins.
// It carries the full candidate set so the caller can prompt the user
// to retry with a canonical id.
type AmbiguousError struct {
	Query   string
	Options []CoinOption
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("symbol %q is ambiguous (%d matches)", e.Query, len(e.Options))
}

// OptionStrings renders the candidates as "id (Name)" lines for
// human-readable error bodies.
func (e *AmbiguousError) OptionStrings() []string {
	out := make([]string, len(e.Options))
	for i, o := range e.Options {
		out[i] = fmt.Sprintf("%s (%s)", o.ID, o.Name)
	}
	return out
}
