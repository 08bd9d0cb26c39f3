package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Reservation{},
		&models.ReservationItem{},
		&models.AgeVerification{},
	)
	require.NoError(t, err)
	return db
}

func createProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestBuildCartTotals(t *testing.T) {
	db := setupServiceDB(t)
	cs := NewCartService(db, 0.06)

	a := createProduct(t, db, models.Product{
		SKU: "A-1", Name: "Taxed Vape", Price: 10.00,
		IsTaxable: true, TrackInventory: true, Stock: 10, IsActive: true,
	})
	b := createProduct(t, db, models.Product{
		SKU: "B-1", Name: "Glass Piece", Price: 25.00,
		IsTaxable: false, TrackInventory: true, Stock: 5, IsActive: true,
	})

	cart := map[uint]int{a.ID: 2, b.ID: 1}
	lines, totals, err := cs.BuildCart(cart)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.InDelta(t, 45.00, totals.Subtotal, 0.0001)
	assert.InDelta(t, 1.20, totals.TaxAmount, 0.0001)
	assert.InDelta(t, 46.20, totals.TotalPrice, 0.0001)
	assert.Equal(t, 3, totals.ItemCount)
}

func TestBuildCartDropsInactiveProducts(t *testing.T) {
	db := setupServiceDB(t)
	cs := NewCartService(db, 0.07)

	active := createProduct(t, db, models.Product{
		SKU: "ACT-1", Name: "Active", Price: 5.00,
		IsTaxable: true, TrackInventory: true, Stock: 10, IsActive: true,
	})
	inactive := createProduct(t, db, models.Product{
		SKU: "INA-1", Name: "Retired", Price: 9.00,
		IsTaxable: true, TrackInventory: true, Stock: 10, IsActive: false,
	})

	cart := map[uint]int{active.ID: 1, inactive.ID: 2}
	lines, totals, err := cs.BuildCart(cart)
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, active.ID, lines[0].Product.ID)
	assert.Equal(t, 1, totals.ItemCount)
	// the stored map keeps the stale line, only the display drops it
	assert.Len(t, cart, 2)
}

func TestAddRejectsInsufficientStock(t *testing.T) {
	db := setupServiceDB(t)
	cs := NewCartService(db, 0.07)

	p := createProduct(t, db, models.Product{
		SKU: "LOW-1", Name: "Low Stock", Price: 12.00,
		IsTaxable: true, TrackInventory: true, Stock: 5, IsActive: true,
	})

	cart := map[uint]int{}
	_, err := cs.Add(cart, p.ID, 10)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, cart)
}

func TestAddAccumulatesAndValidates(t *testing.T) {
	db := setupServiceDB(t)
	cs := NewCartService(db, 0.07)

	p := createProduct(t, db, models.Product{
		SKU: "ADD-1", Name: "Stacker", Price: 8.00,
		IsTaxable: true, TrackInventory: true, Stock: 50, IsActive: true,
	})

	cart := map[uint]int{}
	_, err := cs.Add(cart, p.ID, 2)
	require.NoError(t, err)
	_, err = cs.Add(cart, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, cart[p.ID])

	_, err = cs.Add(cart, p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = cs.Add(cart, p.ID, MaxLineQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = cs.Add(cart, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddUntrackedIgnoresStock(t *testing.T) {
	db := setupServiceDB(t)
	cs := NewCartService(db, 0.07)

	p := createProduct(t, db, models.Product{
		SKU: "UNT-1", Name: "Untracked", Price: 3.00,
		IsTaxable: true, TrackInventory: false, Stock: 0, IsActive: true,
	})

	cart := map[uint]int{}
	_, err := cs.Add(cart, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart[p.ID])
}

func TestUpdateAndRemove(t *testing.T) {
	db := setupServiceDB(t)
	cs := NewCartService(db, 0.07)

	cart := map[uint]int{7: 2}

	require.NoError(t, cs.Update(cart, 7, 5))
	assert.Equal(t, 5, cart[7])

	// zero removes the line
	require.NoError(t, cs.Update(cart, 7, 0))
	assert.Empty(t, cart)

	// negatives remove too, they are not an error
	cart[7] = 3
	require.NoError(t, cs.Update(cart, 7, -1))
	assert.Empty(t, cart)

	assert.ErrorIs(t, cs.Update(cart, 7, MaxLineQuantity+1), ErrInvalidQuantity)

	cart[9] = 1
	cs.Remove(cart, 9)
	cs.Remove(cart, 9) // absent is a no-op
	assert.Empty(t, cart)
}

func TestCartCount(t *testing.T) {
	assert.Equal(t, 0, CartCount(map[uint]int{}))
	assert.Equal(t, 6, CartCount(map[uint]int{1: 2, 2: 4}))
}
