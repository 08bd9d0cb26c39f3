package models

import "time"

// ReservationItem snapshots the product name, SKU and pricing at the
// moment of checkout. A line must never change retroactively, even if
// the product record does.
type ReservationItem struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	ReservationID uint  `gorm:"not null;index" json:"reservation_id"`
	// Omitting Reservation from JSON to avoid recursive nesting
	Reservation *Reservation `gorm:"foreignKey:ReservationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID   *uint        `gorm:"index" json:"product_id,omitempty"`
	Product     *Product     `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
	ProductName string       `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSKU  string       `gorm:"type:varchar(100)" json:"product_sku"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal    float64      `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxRate     float64      `gorm:"type:decimal(8,4);not null;default:0" json:"tax_rate"`
	TaxAmount   float64      `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax_amount"`
	TotalPrice  float64      `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

// NewReservationItem builds a line for a reservation from a product and
// its computed pricing.
func NewReservationItem(reservationID uint, product *Product, quantity int, pricing ItemPricing) ReservationItem {
	productID := product.ID
	return ReservationItem{
		ReservationID: reservationID,
		ProductID:     &productID,
		ProductName:   product.Name,
		ProductSKU:    product.SKU,
		Quantity:      quantity,
		UnitPrice:     pricing.UnitPrice,
		Subtotal:      pricing.Subtotal,
		TaxRate:       pricing.TaxRate,
		TaxAmount:     pricing.TaxAmount,
		TotalPrice:    pricing.TotalPrice,
	}
}
