package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateItemPricingTaxable(t *testing.T) {
	product := Product{Price: 15.00, IsTaxable: true}

	pricing := product.CalculateItemPricing(3, 0.07)

	assert.InDelta(t, 15.00, pricing.UnitPrice, 0.0001)
	assert.InDelta(t, 45.00, pricing.Subtotal, 0.0001)
	assert.InDelta(t, 0.07, pricing.TaxRate, 0.0001)
	assert.InDelta(t, 3.15, pricing.TaxAmount, 0.0001)
	assert.InDelta(t, 48.15, pricing.TotalPrice, 0.0001)
}

func TestCalculateItemPricingRoundsTaxOnly(t *testing.T) {
	product := Product{Price: 19.99, IsTaxable: true}

	pricing := product.CalculateItemPricing(1, 0.07)

	// 19.99 * 0.07 = 1.3993, rounded to 1.40 at the tax step
	assert.InDelta(t, 1.40, pricing.TaxAmount, 0.0001)
	assert.InDelta(t, 21.39, pricing.TotalPrice, 0.0001)
}

func TestCalculateItemPricingNonTaxable(t *testing.T) {
	product := Product{Price: 25.00, IsTaxable: false}

	pricing := product.CalculateItemPricing(2, 0.07)

	assert.InDelta(t, 50.00, pricing.Subtotal, 0.0001)
	assert.Zero(t, pricing.TaxRate)
	assert.Zero(t, pricing.TaxAmount)
	assert.InDelta(t, 50.00, pricing.TotalPrice, 0.0001)
}

func TestInStock(t *testing.T) {
	tracked := Product{TrackInventory: true, Stock: 0}
	assert.False(t, tracked.InStock())

	tracked.Stock = 3
	assert.True(t, tracked.InStock())

	untracked := Product{TrackInventory: false, Stock: 0}
	assert.True(t, untracked.InStock())
}

func TestReservationStatusHelpers(t *testing.T) {
	assert.True(t, IsValidStatus(StatusPending))
	assert.True(t, IsValidStatus(StatusCancelled))
	assert.False(t, IsValidStatus("expired"))

	r := Reservation{Status: StatusReady}
	assert.Equal(t, "Ready for Pickup", r.StatusLabel())
	assert.Equal(t, "green", r.StatusColor())
}
