package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

const (
	confirmationPrefix   = "PCV-"
	confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	confirmationLength   = 6
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrUnknownStatus       = errors.New("unknown reservation status")
	ErrStatusUnchanged     = errors.New("status unchanged")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrReservationNotFound = errors.New("reservation not found")
)

// allowedTransitions encodes the reservation state machine. Completed
// and cancelled are terminal.
var allowedTransitions = map[string]map[string]bool{
	models.StatusPending: {
		models.StatusReady:     true,
		models.StatusCompleted: true,
		models.StatusCancelled: true,
	},
	models.StatusReady: {
		models.StatusCompleted: true,
		models.StatusCancelled: true,
	},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// ReservationService owns checkout and the reservation lifecycle.
type ReservationService struct {
	db      *gorm.DB
	taxRate float64
	mailer  *Mailer
}

func NewReservationService(db *gorm.DB, taxRate float64, mailer *Mailer) *ReservationService {
	return &ReservationService{db: db, taxRate: taxRate, mailer: mailer}
}

// CheckoutInput carries the validated customer fields into checkout.
type CheckoutInput struct {
	Name         string
	Email        string
	Phone        string
	DOB          *time.Time
	IsSubscribed bool
	Notes        string
}

// MeetsAgeRequirement reports whether a date of birth is at least
// minYears before now (born exactly minYears ago today still passes).
func MeetsAgeRequirement(dob time.Time, minYears int, now time.Time) bool {
	cutoff := now.AddDate(-minYears, 0, 0)
	return !dob.After(cutoff)
}

// Checkout converts the session cart into a pending reservation.
// Customer upsert, item snapshots, stock decrements, totals and
// customer stats all commit atomically; a stock shortage on any line
// aborts the whole order. The confirmation email is dispatched after
// commit and its failure never surfaces to the caller.
func (rs *ReservationService) Checkout(cart map[uint]int, in CheckoutInput) (*models.Reservation, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	tx := rs.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	customer, err := rs.findOrCreateCustomer(tx, in)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	code, err := rs.generateConfirmationNumber(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	reservation := models.Reservation{
		ConfirmationNumber: code,
		CustomerID:         customer.ID,
		Status:             models.StatusPending,
		Notes:              in.Notes,
	}
	if err := tx.Create(&reservation).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	ids := make([]uint, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	created := 0
	for _, id := range ids {
		quantity := cart[id]

		// Reload fresh; the cart-time snapshot may be stale.
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			tx.Rollback()
			return nil, err
		}

		if product.TrackInventory && product.Stock < quantity {
			tx.Rollback()
			return nil, fmt.Errorf("not enough stock for %s: %w", product.Name, ErrInsufficientStock)
		}

		pricing := product.CalculateItemPricing(quantity, rs.taxRate)
		item := models.NewReservationItem(reservation.ID, &product, quantity, pricing)
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		if product.TrackInventory {
			// Conditional decrement: the stock check and the write are
			// one statement, so two concurrent checkouts cannot both
			// take the last unit.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
			if res.Error != nil {
				tx.Rollback()
				return nil, res.Error
			}
			if res.RowsAffected == 0 {
				tx.Rollback()
				return nil, fmt.Errorf("not enough stock for %s: %w", product.Name, ErrInsufficientStock)
			}
		}
		created++
	}

	if created == 0 {
		// Every product in the cart has been deactivated or deleted.
		tx.Rollback()
		return nil, ErrEmptyCart
	}

	if err := rs.recalculateTotals(tx, &reservation); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := rs.updateCustomerStats(tx, customer.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reservation.Customer = customer
	rs.notify(&reservation, models.StatusPending)

	return &reservation, nil
}

func (rs *ReservationService) findOrCreateCustomer(tx *gorm.DB, in CheckoutInput) (*models.Customer, error) {
	var customer models.Customer
	err := tx.Where("email = ?", in.Email).First(&customer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = models.Customer{
			Name:   in.Name,
			Email:  in.Email,
			Phone:  in.Phone,
			DOB:    in.DOB,
			Source: "website",
		}
		if err := tx.Create(&customer).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	// Contact fields update idempotently on every checkout.
	if in.Name != "" {
		customer.Name = in.Name
	}
	customer.Phone = in.Phone
	customer.IsSubscribed = in.IsSubscribed
	if customer.DOB == nil && in.DOB != nil {
		customer.DOB = in.DOB
	}
	if err := tx.Save(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// generateConfirmationNumber draws PCV- plus 6 random alphanumerics,
// retrying until the code is unused. Collisions are rare but the loop
// must handle them, not assume them away.
func (rs *ReservationService) generateConfirmationNumber(tx *gorm.DB) (string, error) {
	for {
		code, err := randomConfirmationCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.Reservation{}).
			Where("confirmation_number = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
}

func randomConfirmationCode() (string, error) {
	buf := make([]byte, confirmationLength)
	max := big.NewInt(int64(len(confirmationAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = confirmationAlphabet[n.Int64()]
	}
	return confirmationPrefix + string(buf), nil
}

func (rs *ReservationService) recalculateTotals(tx *gorm.DB, r *models.Reservation) error {
	var items []models.ReservationItem
	if err := tx.Where("reservation_id = ?", r.ID).Find(&items).Error; err != nil {
		return err
	}

	var subtotal, taxAmount float64
	itemCount := 0
	for _, item := range items {
		subtotal += item.Subtotal
		taxAmount += item.TaxAmount
		itemCount += item.Quantity
	}

	r.Subtotal = utils.RoundMoney(subtotal)
	r.TaxAmount = utils.RoundMoney(taxAmount)
	r.TotalPrice = utils.RoundMoney(subtotal + taxAmount)
	r.ItemCount = itemCount
	r.Items = items

	return tx.Model(&models.Reservation{}).Where("id = ?", r.ID).
		Updates(map[string]interface{}{
			"subtotal":    r.Subtotal,
			"tax_amount":  r.TaxAmount,
			"total_price": r.TotalPrice,
			"item_count":  r.ItemCount,
		}).Error
}

// updateCustomerStats recomputes the cached aggregates from the
// reservations table. Total spent counts completed orders only.
func (rs *ReservationService) updateCustomerStats(tx *gorm.DB, customerID uint) error {
	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		return err
	}

	var count int64
	if err := tx.Model(&models.Reservation{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return err
	}

	var spent float64
	if err := tx.Model(&models.Reservation{}).
		Where("customer_id = ? AND status = ?", customerID, models.StatusCompleted).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&spent).Error; err != nil {
		return err
	}

	customer.TotalReservations = int(count)
	customer.TotalSpent = spent

	var latest models.Reservation
	err := tx.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&latest).Error
	switch {
	case err == nil:
		customer.LastReservationAt = &latest.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	return tx.Save(&customer).Error
}

// UpdateCustomerStats recomputes a customer's cached aggregates outside
// any surrounding transaction (admin tooling).
func (rs *ReservationService) UpdateCustomerStats(customerID uint) error {
	return rs.updateCustomerStats(rs.db, customerID)
}

// UpdateStatus advances a reservation through the state machine on
// behalf of an administrator. A same-status request short-circuits with
// ErrStatusUnchanged and no side effects.
func (rs *ReservationService) UpdateStatus(reservationID uint, newStatus, notes string, adminID uint) (*models.Reservation, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%q: %w", newStatus, ErrUnknownStatus)
	}

	var reservation models.Reservation
	if err := rs.db.Preload("Items").Preload("Customer").
		First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	oldStatus := reservation.Status
	if oldStatus == newStatus {
		return &reservation, ErrStatusUnchanged
	}
	if !allowedTransitions[oldStatus][newStatus] {
		return nil, fmt.Errorf("%s to %s: %w", oldStatus, newStatus, ErrIllegalTransition)
	}

	tx := rs.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	now := time.Now()
	reservation.Status = newStatus
	reservation.ProcessedAt = &now
	if adminID != 0 {
		reservation.ProcessedBy = &adminID
	}
	if notes != "" {
		reservation.Notes = notes
	}

	switch newStatus {
	case models.StatusReady:
		reservation.ReadyAt = &now
	case models.StatusCancelled:
		reservation.CancelledAt = &now
		reservation.CancellationReason = models.CancelReasonAdmin
	}

	if err := tx.Save(&reservation).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if newStatus == models.StatusCancelled && oldStatus != models.StatusCancelled {
		if err := restoreStock(tx, reservation.Items); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if newStatus == models.StatusCompleted {
		if err := rs.updateCustomerStats(tx, reservation.CustomerID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	rs.notify(&reservation, newStatus)
	return &reservation, nil
}

// AutoCancel cancels one expired reservation on behalf of the sweep.
// The status guard in the UPDATE makes it safe to race with an admin
// transition: a reservation already moved out of ready is skipped, not
// double-processed. Returns false when skipped.
func (rs *ReservationService) AutoCancel(reservation *models.Reservation) (bool, error) {
	tx := rs.db.Begin()
	if tx.Error != nil {
		return false, tx.Error
	}

	now := time.Now()
	res := tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservation.ID, models.StatusReady).
		Updates(map[string]interface{}{
			"status":              models.StatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": models.CancelReasonAutoExpired,
			"processed_at":        now,
		})
	if res.Error != nil {
		tx.Rollback()
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return false, nil
	}

	if err := restoreStock(tx, reservation.Items); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}

	reservation.Status = models.StatusCancelled
	reservation.CancelledAt = &now
	reservation.CancellationReason = models.CancelReasonAutoExpired
	rs.notify(reservation, models.StatusCancelled)

	return true, nil
}

// restoreStock returns each line's quantity to its product. Deleted
// products are a no-op, never an error.
func restoreStock(tx *gorm.DB, items []models.ReservationItem) error {
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		var product models.Product
		if err := tx.First(&product, *item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if !product.TrackInventory {
			continue
		}
		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}

// notify dispatches the status email in the background. Delivery
// failure is logged and never affects the caller-visible result.
func (rs *ReservationService) notify(reservation *models.Reservation, status string) {
	if rs.mailer == nil {
		return
	}
	r := *reservation
	go func() {
		if err := rs.mailer.SendReservationEmail(&r, status); err != nil {
			utils.ErrorLogger.Printf("failed to send %s email for %s: %v",
				status, r.ConfirmationNumber, err)
		}
	}()
}
