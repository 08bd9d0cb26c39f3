package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

// PickupWindow is how long a ready reservation waits before the sweep
// cancels it.
const PickupWindow = 24 * time.Hour

// ExpiryService periodically cancels reservations that sat in ready
// status past the pickup window.
type ExpiryService struct {
	db           *gorm.DB
	reservations *ReservationService
	sched        *cron.Cron
}

func NewExpiryService(db *gorm.DB, reservations *ReservationService) *ExpiryService {
	return &ExpiryService{db: db, reservations: reservations}
}

// Start schedules the hourly sweep.
func (es *ExpiryService) Start() {
	es.sched = cron.New()
	_, err := es.sched.AddFunc("@hourly", func() {
		count, err := es.CancelExpired()
		if err != nil {
			utils.ErrorLogger.Printf("expiry sweep failed: %v", err)
			return
		}
		if count > 0 {
			utils.InfoLogger.Printf("expiry sweep cancelled %d reservation(s)", count)
		}
	})
	if err != nil {
		utils.ErrorLogger.Printf("failed to schedule expiry sweep: %v", err)
		return
	}
	es.sched.Start()
}

func (es *ExpiryService) Stop() {
	if es.sched != nil {
		es.sched.Stop()
	}
}

// CancelExpired runs one sweep and reports how many reservations were
// cancelled. One reservation failing does not abort the batch; it is
// logged and the sweep moves on. Safe to run concurrently with admin
// transitions: rows already moved out of ready are skipped.
func (es *ExpiryService) CancelExpired() (int, error) {
	cutoff := time.Now().Add(-PickupWindow)

	var expired []models.Reservation
	if err := es.db.Preload("Items").Preload("Customer").
		Where("status = ? AND ready_at IS NOT NULL AND ready_at <= ?", models.StatusReady, cutoff).
		Find(&expired).Error; err != nil {
		return 0, err
	}

	count := 0
	for i := range expired {
		reservation := &expired[i]
		cancelled, err := es.reservations.AutoCancel(reservation)
		if err != nil {
			utils.ErrorLogger.Printf("failed to auto-cancel %s: %v",
				reservation.ConfirmationNumber, err)
			continue
		}
		if !cancelled {
			continue
		}
		utils.InfoLogger.Printf("auto-cancelled expired reservation %s (ready_at=%s)",
			reservation.ConfirmationNumber, reservation.ReadyAt.Format(time.RFC3339))
		count++
	}

	return count, nil
}
