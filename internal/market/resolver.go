package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

// DirectoryProvider supplies the full coin directory.
type DirectoryProvider interface {
	Directory(ctx context.Context) ([]models.CoinListing, error)
}

// Resolver maps a free-form user query (canonical id, ticker symbol,
// or full name) to exactly one canonical coin id.
type Resolver struct {
	dir DirectoryProvider
}

func NewResolver(dir DirectoryProvider) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve is case-insensitive and tries, in order: exact id match,
// exact symbol match, exact name match. Ids and names are effectively
// unique in the provider's dataset so first match wins there; tickers
// are shared across coins, so a symbol hitting two or more entries
// fails with AmbiguousError carrying every candidate.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	coins, err := r.dir.Directory(ctx)
	if err != nil {
		return "", err
	}

	q := strings.ToLower(strings.TrimSpace(query))

	for _, c := range coins {
		if strings.ToLower(c.ID) == q {
			return c.ID, nil
		}
	}

	var matches []models.CoinListing
	for _, c := range coins {
		if strings.ToLower(c.Symbol) == q {
			matches = append(matches, c)
		}
	}
	switch {
	case len(matches) == 1:
		return matches[0].ID, nil
	case len(matches) > 1:
		opts := make([]models.CoinOption, len(matches))
		for i, m := range matches {
			opts[i] = models.CoinOption{ID: m.ID, Name: m.Name}
		}
		return "", &models.AmbiguousError{Query: query, Options: opts}
	}

	for _, c := range coins {
		if strings.ToLower(c.Name) == q {
			return c.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %q matched no coin id, symbol, or name", models.ErrNotFound, query)
}
