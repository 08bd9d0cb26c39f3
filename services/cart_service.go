package services

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

// MaxLineQuantity caps how many units of one product a cart may hold.
const MaxLineQuantity = 99

var (
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and 99")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrProductNotFound   = errors.New("product not found")
)

// CartLine is one displayable cart row: the resolved product, the
// requested quantity and the computed pricing.
type CartLine struct {
	Product  models.Product     `json:"product"`
	Quantity int                `json:"quantity"`
	Pricing  models.ItemPricing `json:"pricing"`
}

type CartTotals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxAmount  float64 `json:"tax_amount"`
	TotalPrice float64 `json:"total_price"`
	ItemCount  int     `json:"item_count"`
}

// CartService turns the session's product-id -> quantity map into
// priced lines and aggregate totals.
type CartService struct {
	db      *gorm.DB
	taxRate float64
}

func NewCartService(db *gorm.DB, taxRate float64) *CartService {
	return &CartService{db: db, taxRate: taxRate}
}

// BuildCart resolves the cart against currently active products.
// Inactive or deleted products are dropped from the result, not from
// the stored map.
func (cs *CartService) BuildCart(cart map[uint]int) ([]CartLine, CartTotals, error) {
	lines := make([]CartLine, 0, len(cart))
	if len(cart) == 0 {
		return lines, CartTotals{}, nil
	}

	ids := make([]uint, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var products []models.Product
	if err := cs.db.Preload("Category").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error; err != nil {
		return nil, CartTotals{}, err
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			continue
		}
		quantity := cart[id]
		lines = append(lines, CartLine{
			Product:  product,
			Quantity: quantity,
			Pricing:  product.CalculateItemPricing(quantity, cs.taxRate),
		})
	}

	return lines, cs.totals(lines), nil
}

func (cs *CartService) totals(lines []CartLine) CartTotals {
	var totals CartTotals
	for _, line := range lines {
		totals.Subtotal += line.Pricing.Subtotal
		totals.TaxAmount += line.Pricing.TaxAmount
		totals.ItemCount += line.Quantity
	}
	totals.TotalPrice = utils.RoundMoney(totals.Subtotal + totals.TaxAmount)
	totals.Subtotal = utils.RoundMoney(totals.Subtotal)
	totals.TaxAmount = utils.RoundMoney(totals.TaxAmount)
	return totals
}

// Add increases the quantity for a product by delta. The whole add is
// rejected, leaving the cart untouched, when tracked stock cannot
// cover the delta. The check reads the current counter only; it is not
// atomic against other sessions (checkout re-verifies atomically).
func (cs *CartService) Add(cart map[uint]int, productID uint, delta int) (*models.Product, error) {
	if delta < 1 || delta > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	var product models.Product
	if err := cs.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if product.TrackInventory && product.Stock < delta {
		return nil, ErrInsufficientStock
	}

	cart[productID] += delta
	return &product, nil
}

// Update sets the absolute quantity for a product; zero or negative
// removes the line.
func (cs *CartService) Update(cart map[uint]int, productID uint, quantity int) error {
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if quantity <= 0 {
		delete(cart, productID)
		return nil
	}
	cart[productID] = quantity
	return nil
}

// Remove deletes the line if present; absent is not an error.
func (cs *CartService) Remove(cart map[uint]int, productID uint) {
	delete(cart, productID)
}

// CartCount is the badge count shown in the shop header.
func CartCount(cart map[uint]int) int {
	total := 0
	for _, quantity := range cart {
		total += quantity
	}
	return total
}
