package depth

import (
	"sort"
	"time"

	"github.com/marketlens/nftdepth/internal/marketplace"
)

// PriceBucket is one order-book level: a representative price (a
// multiple of the bucket granularity) and the aggregated unit count at
// that price.
type PriceBucket struct {
	Price float64 `json:"price"`
	Depth int     `json:"depth"`
}

// Snapshot is the aggregated order book for a collection. Listings are
// sorted ascending (cheapest ask first), offers descending (highest
// bid first). A zero LowestListing or HighestOffer means the
// respective side is empty; zero is the convention for "no data"
// throughout, matching the dashboard wire format.
type Snapshot struct {
	Listings          []PriceBucket `json:"listings"`
	Offers            []PriceBucket `json:"offers"`
	Spread            float64       `json:"spread"`
	SpreadPercent     float64       `json:"spreadPercent"`
	LowestListing     float64       `json:"lowestListing"`
	HighestOffer      float64       `json:"highestOffer"`
	TotalListingDepth int           `json:"totalListingDepth"`
	TotalOfferDepth   int           `json:"totalOfferDepth"`
	LastUpdated       time.Time     `json:"lastUpdated"`
}

// Aggregate builds a market-depth snapshot from raw marketplace
// listings and offers. It is a pure function of its inputs: the same
// listings and offers always produce identical buckets and summary
// numbers, with only LastUpdated taken from now.
//
// Listings contribute 1 unit each to their bucket; offers contribute
// their remaining quantity. Entries with a per-unit price <= 0 are
// malformed input and never appear in buckets or totals.
func Aggregate(listings []marketplace.RawListing, offers []marketplace.RawOffer, now time.Time) Snapshot {
	askBuckets := make(map[float64]int)
	lowestListing := 0.0
	totalListingDepth := 0
	for _, l := range listings {
		price := ListingUnitPrice(l)
		if price <= 0 {
			continue
		}
		askBuckets[Bucket(price)]++
		totalListingDepth++
		if lowestListing == 0 || price < lowestListing {
			lowestListing = price
		}
	}

	bidBuckets := make(map[float64]int)
	totalOfferDepth := 0
	for _, o := range offers {
		price, quantity := OfferUnitPrice(o)
		if price <= 0 || quantity <= 0 {
			continue
		}
		bidBuckets[Bucket(price)] += quantity
		totalOfferDepth += quantity
	}

	asks := sortBuckets(askBuckets, true)
	bids := sortBuckets(bidBuckets, false)

	// Highest bid is the first bucket on the descending side; the
	// lowest ask deliberately stays the raw (unbucketed) minimum.
	highestOffer := 0.0
	if len(bids) > 0 {
		highestOffer = bids[0].Price
	}

	spread := round3(lowestListing - highestOffer)
	spreadPercent := 0.0
	if highestOffer > 0 {
		spreadPercent = round1(spread / highestOffer * 100)
	}

	return Snapshot{
		Listings:          asks,
		Offers:            bids,
		Spread:            spread,
		SpreadPercent:     spreadPercent,
		LowestListing:     lowestListing,
		HighestOffer:      highestOffer,
		TotalListingDepth: totalListingDepth,
		TotalOfferDepth:   totalOfferDepth,
		LastUpdated:       now,
	}
}

func sortBuckets(buckets map[float64]int, ascending bool) []PriceBucket {
	out := make([]PriceBucket, 0, len(buckets))
	for price, depth := range buckets {
		out = append(out, PriceBucket{Price: price, Depth: depth})
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Price < out[j].Price
		}
		return out[i].Price > out[j].Price
	})
	return out
}
