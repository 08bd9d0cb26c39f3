package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type Product struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ExternalID     string         `gorm:"type:varchar(50)" json:"external_id"`
	SKU            string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Brand          string         `gorm:"type:varchar(100)" json:"brand"`
	Price          float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	IsTaxable      bool           `gorm:"not null;default:true" json:"is_taxable"`
	TrackInventory bool           `gorm:"not null;default:true" json:"track_inventory"`
	Stock          int            `gorm:"not null;default:0" json:"stock"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	IsFeatured     bool           `gorm:"not null;default:false" json:"is_featured"`
	AgeRestricted  bool           `gorm:"not null;default:true" json:"age_restricted"`
	CategoryID     *uint          `gorm:"index" json:"category_id"`
	Category       *Category      `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// ItemPricing is the priced breakdown of a single cart or order line.
type ItemPricing struct {
	UnitPrice  float64 `json:"unit_price"`
	Subtotal   float64 `json:"subtotal"`
	TaxRate    float64 `json:"tax_rate"`
	TaxAmount  float64 `json:"tax_amount"`
	TotalPrice float64 `json:"total_price"`
}

// CalculateItemPricing prices a quantity of this product. Rounding
// happens at the tax-amount step only; the subtotal keeps the raw
// price*quantity product so repeated runs always agree.
func (p *Product) CalculateItemPricing(quantity int, taxRate float64) ItemPricing {
	subtotal := p.Price * float64(quantity)

	rate := 0.0
	if p.IsTaxable {
		rate = taxRate
	}
	taxAmount := utils.RoundMoney(subtotal * rate)

	return ItemPricing{
		UnitPrice:  p.Price,
		Subtotal:   subtotal,
		TaxRate:    rate,
		TaxAmount:  taxAmount,
		TotalPrice: subtotal + taxAmount,
	}
}

// InStock reports availability. Untracked inventory is always in stock
// regardless of the stored counter.
func (p *Product) InStock() bool {
	return !p.TrackInventory || p.Stock > 0
}

func (p *Product) FormattedPrice() string {
	return utils.FormatPrice(p.Price)
}
