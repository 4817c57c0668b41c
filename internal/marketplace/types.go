package marketplace

// PriceAmount is a fixed-point token amount as the marketplace API
// encodes it: Value is a base-10 integer string and Decimals the
// exponent, so the native-unit price is Value / 10^Decimals. Value
// routinely exceeds float64-safe integer range (18-decimal tokens),
// which is why it stays a string until parsed with math/big.
type PriceAmount struct {
	Value    string `json:"value"`
	Decimals int    `json:"decimals"`
}

// RawListing is one active sell order for exactly one unit of the
// asset. Price is nil when the marketplace returned no price data.
type RawListing struct {
	Price *PriceAmount `json:"price"`
}

// RawOffer is one active buy order that may cover multiple units.
// Price.Value is the TOTAL commitment across all remaining units, not
// a per-unit price. RemainingQuantity is nil when the marketplace
// omits the field (treated as a single-unit offer downstream); a
// present zero means the offer is fully filled.
type RawOffer struct {
	Price             *PriceAmount `json:"price"`
	RemainingQuantity *int         `json:"remaining_quantity,omitempty"`
}

type listingsResponse struct {
	Listings []RawListing `json:"listings"`
}

type offersResponse struct {
	Offers []RawOffer `json:"offers"`
}
