package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
)

func readyReservation(t *testing.T, db *gorm.DB, sku string, readyAgo time.Duration) (models.Reservation, models.Product) {
	product := createProduct(t, db, models.Product{
		SKU: sku, Name: "Swept Item " + sku, Price: 10.00,
		IsTaxable: true, TrackInventory: true, Stock: 8, IsActive: true,
	})

	customer := models.Customer{Name: "Expiry Customer", Email: sku + "@example.com"}
	require.NoError(t, db.Create(&customer).Error)

	readyAt := time.Now().Add(-readyAgo)
	reservation := models.Reservation{
		ConfirmationNumber: "PCV-EX" + sku,
		CustomerID:         customer.ID,
		Status:             models.StatusReady,
		ReadyAt:            &readyAt,
	}
	require.NoError(t, db.Create(&reservation).Error)

	pricing := product.CalculateItemPricing(2, 0.07)
	item := models.NewReservationItem(reservation.ID, &product, 2, pricing)
	require.NoError(t, db.Create(&item).Error)

	return reservation, product
}

func TestCancelExpiredSweepsPastWindow(t *testing.T) {
	db := setupServiceDB(t)
	rs := NewReservationService(db, 0.07, nil)
	es := NewExpiryService(db, rs)

	expired, product := readyReservation(t, db, "EXP1", 25*time.Hour)
	fresh, _ := readyReservation(t, db, "EXP2", 23*time.Hour)

	count, err := es.CancelExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var swept models.Reservation
	require.NoError(t, db.First(&swept, expired.ID).Error)
	assert.Equal(t, models.StatusCancelled, swept.Status)
	assert.Equal(t, models.CancelReasonAutoExpired, swept.CancellationReason)
	require.NotNil(t, swept.CancelledAt)

	var untouched models.Reservation
	require.NoError(t, db.First(&untouched, fresh.ID).Error)
	assert.Equal(t, models.StatusReady, untouched.Status)

	// the two snapshot units went back on the shelf
	var restocked models.Product
	require.NoError(t, db.First(&restocked, product.ID).Error)
	assert.Equal(t, 10, restocked.Stock)
}

func TestCancelExpiredIgnoresPendingWithoutReadyAt(t *testing.T) {
	db := setupServiceDB(t)
	rs := NewReservationService(db, 0.07, nil)
	es := NewExpiryService(db, rs)

	customer := models.Customer{Name: "Waiting", Email: "waiting@example.com"}
	require.NoError(t, db.Create(&customer).Error)

	old := time.Now().Add(-48 * time.Hour)
	reservation := models.Reservation{
		ConfirmationNumber: "PCV-WAIT01",
		CustomerID:         customer.ID,
		Status:             models.StatusPending,
		CreatedAt:          old,
	}
	require.NoError(t, db.Create(&reservation).Error)

	count, err := es.CancelExpired()
	require.NoError(t, err)
	assert.Zero(t, count)

	var unchanged models.Reservation
	require.NoError(t, db.First(&unchanged, reservation.ID).Error)
	assert.Equal(t, models.StatusPending, unchanged.Status)
}

func TestCancelExpiredIsIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	rs := NewReservationService(db, 0.07, nil)
	es := NewExpiryService(db, rs)

	_, product := readyReservation(t, db, "EXP3", 30*time.Hour)

	count, err := es.CancelExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// second run finds nothing and restores nothing twice
	count, err = es.CancelExpired()
	require.NoError(t, err)
	assert.Zero(t, count)

	var restocked models.Product
	require.NoError(t, db.First(&restocked, product.ID).Error)
	assert.Equal(t, 10, restocked.Stock)
}
