package models

// CoinListing is one entry of the provider's full coin directory.
type CoinListing struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// CoinData is the provider's single-coin lookup result. PriceUSD is
// nil when the provider has no USD quote for the coin.
type CoinData struct {
	ID       string
	Symbol   string
	Name     string
	PriceUSD *float64
}
