package models

// Crypto is a user-tracked coin persisted in the cryptos table.
// CgID is the provider's canonical, lower-case coin id ("bitcoin"),
// resolved once at creation time and immutable afterwards.
type Crypto struct {
	CgID   string  `json:"cg_id"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

// CryptoUpdate is a partial update. A nil field is left untouched.
// Symbol and CgID are immutable after creation and cannot appear here.
type CryptoUpdate struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// PriceUpdate reports one write-back performed by a price refresh run.
type PriceUpdate struct {
	CgID     string  `json:"cg_id"`
	NewPrice float64 `json:"new_price"`
}
