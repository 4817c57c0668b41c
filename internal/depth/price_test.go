package depth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketlens/nftdepth/internal/marketplace"
)

func intPtr(v int) *int { return &v }

func TestListingUnitPrice(t *testing.T) {
	tests := []struct {
		name    string
		listing marketplace.RawListing
		want    float64
	}{
		{
			name:    "one_native_unit_18_decimals",
			listing: marketplace.RawListing{Price: &marketplace.PriceAmount{Value: "1000000000000000000", Decimals: 18}},
			want:    1.0,
		},
		{
			name:    "fractional_price",
			listing: marketplace.RawListing{Price: &marketplace.PriceAmount{Value: "1050000000000000000", Decimals: 18}},
			want:    1.05,
		},
		{
			name:    "small_decimals",
			listing: marketplace.RawListing{Price: &marketplace.PriceAmount{Value: "12345", Decimals: 2}},
			want:    123.45,
		},
		{
			name:    "zero_decimals",
			listing: marketplace.RawListing{Price: &marketplace.PriceAmount{Value: "7", Decimals: 0}},
			want:    7.0,
		},
		{
			name:    "missing_price",
			listing: marketplace.RawListing{},
			want:    0,
		},
		{
			name:    "empty_value",
			listing: marketplace.RawListing{Price: &marketplace.PriceAmount{Value: "", Decimals: 18}},
			want:    0,
		},
		{
			name:    "unparseable_value",
			listing: marketplace.RawListing{Price: &marketplace.PriceAmount{Value: "not-a-number", Decimals: 18}},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ListingUnitPrice(tt.listing), 1e-12)
		})
	}
}

func TestListingUnitPrice_BeyondFloatSafeIntegerRange(t *testing.T) {
	// 1234567.891234567891234567 in 18-decimal fixed point. The
	// numerator has 25 digits, far past 2^53; string-to-float parsing
	// of the numerator would not survive this exactly.
	listing := marketplace.RawListing{
		Price: &marketplace.PriceAmount{Value: "1234567891234567891234567", Decimals: 18},
	}
	assert.InDelta(t, 1234567.891234567891234567, ListingUnitPrice(listing), 1e-6)
}

func TestOfferUnitPrice(t *testing.T) {
	tests := []struct {
		name      string
		offer     marketplace.RawOffer
		wantPrice float64
		wantQty   int
	}{
		{
			name: "total_value_divided_by_quantity",
			offer: marketplace.RawOffer{
				Price:             &marketplace.PriceAmount{Value: "3000000000000000000", Decimals: 18},
				RemainingQuantity: intPtr(3),
			},
			wantPrice: 1.0,
			wantQty:   3,
		},
		{
			name: "absent_quantity_defaults_to_one",
			offer: marketplace.RawOffer{
				Price: &marketplace.PriceAmount{Value: "2500000000000000000", Decimals: 18},
			},
			wantPrice: 2.5,
			wantQty:   1,
		},
		{
			name: "zero_quantity_excluded",
			offer: marketplace.RawOffer{
				Price:             &marketplace.PriceAmount{Value: "1000000000000000000", Decimals: 18},
				RemainingQuantity: intPtr(0),
			},
			wantPrice: 0,
			wantQty:   0,
		},
		{
			name: "negative_quantity_excluded",
			offer: marketplace.RawOffer{
				Price:             &marketplace.PriceAmount{Value: "1000000000000000000", Decimals: 18},
				RemainingQuantity: intPtr(-2),
			},
			wantPrice: 0,
			wantQty:   0,
		},
		{
			name:      "missing_price",
			offer:     marketplace.RawOffer{RemainingQuantity: intPtr(5)},
			wantPrice: 0,
			wantQty:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, qty := OfferUnitPrice(tt.offer)
			assert.InDelta(t, tt.wantPrice, price, 1e-12)
			assert.Equal(t, tt.wantQty, qty)
		})
	}
}

func TestBucket_TruncatesDown(t *testing.T) {
	tests := []struct {
		price float64
		want  float64
	}{
		{1.0, 1.0},
		{1.05, 1.05},
		{1.059, 1.05},
		{1.051, 1.05},
		{2.999, 2.99},
		{0.009, 0.0},
		{0.95, 0.95},
		{123.456, 123.45},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Bucket(tt.price), 1e-12, "Bucket(%v)", tt.price)
	}
}

func TestBucket_Properties(t *testing.T) {
	prices := []float64{0.01, 0.07, 0.5501, 1.0, 1.004999, 3.14159, 42.4242, 999.999}

	for _, p := range prices {
		b := Bucket(p)
		assert.LessOrEqual(t, b, p, "bucket label never exceeds the price")
		assert.Greater(t, b+bucketGranularity, p-1e-12, "price stays within one granularity of its bucket")
		assert.InDelta(t, b, Bucket(b), 1e-12, "bucketing is idempotent")
		assert.InDelta(t, math.Floor(b*100), b*100, 1e-9, "bucket is a multiple of 0.01")
	}
}

func TestRounding(t *testing.T) {
	assert.InDelta(t, 0.1, round3(0.10000000000000009), 1e-12)
	assert.InDelta(t, 10.5, round1(10.526315789473685), 1e-12)
	assert.InDelta(t, -0.1, round3(-0.1004), 1e-12)
	assert.InDelta(t, 1.234, round3(1.2344), 1e-12)
	assert.InDelta(t, 1.235, round3(1.2346), 1e-12)
}
