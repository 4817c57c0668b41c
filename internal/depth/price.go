package depth

import (
	"math"
	"math/big"

	"github.com/marketlens/nftdepth/internal/marketplace"
)

// bucketGranularity is the order-book bucket width in the asset's
// native unit.
const bucketGranularity = 0.01

// ListingUnitPrice converts a listing's fixed-point amount to a
// per-unit decimal price. A listing always covers one unit, so no
// quantity division happens here. Missing or unparseable price data
// yields 0, which downstream aggregation filters out.
func ListingUnitPrice(l marketplace.RawListing) float64 {
	return amountToNative(l.Price)
}

// OfferUnitPrice derives an offer's per-unit price and fillable
// quantity. The marketplace expresses offer price as the TOTAL
// commitment across all remaining units, so the quantity division is
// mandatory. A nil RemainingQuantity means the field was absent and
// quantity defaults to 1; a present value <= 0 marks a fully filled
// offer and returns (0, 0) so the caller excludes it.
func OfferUnitPrice(o marketplace.RawOffer) (pricePerUnit float64, quantity int) {
	if o.Price == nil {
		return 0, 0
	}

	total := amountToNative(o.Price)

	quantity = 1
	if o.RemainingQuantity != nil {
		if *o.RemainingQuantity <= 0 {
			return 0, 0
		}
		quantity = *o.RemainingQuantity
	}

	return total / float64(quantity), quantity
}

// Bucket rounds a price DOWN to the nearest bucketGranularity. The
// truncation direction matters: depth-chart consumers rely on a bucket
// never containing prices below its label.
func Bucket(price float64) float64 {
	return math.Floor(price*100) / 100
}

// amountToNative converts a fixed-point amount to the asset's native
// unit. The integer string is parsed with math/big before the float
// conversion; parsing it directly as a float would lose precision on
// 18-decimal numerators.
func amountToNative(p *marketplace.PriceAmount) float64 {
	if p == nil || p.Value == "" {
		return 0
	}

	numerator, ok := new(big.Int).SetString(p.Value, 10)
	if !ok {
		return 0
	}

	denominator := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Decimals)), nil)
	quotient := new(big.Float).Quo(
		new(big.Float).SetInt(numerator),
		new(big.Float).SetInt(denominator),
	)

	native, _ := quotient.Float64()
	return native
}

// round3 rounds half away from zero at 3 decimal places.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// round1 rounds half away from zero at 1 decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
