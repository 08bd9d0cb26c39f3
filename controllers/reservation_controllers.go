package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/services"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type ReservationController struct {
	DB           *gorm.DB
	Reservations *services.ReservationService
}

func NewReservationController(db *gorm.DB, reservations *services.ReservationService) *ReservationController {
	return &ReservationController{DB: db, Reservations: reservations}
}

// GetAllReservations lists reservations for the back office with
// status, date and search filters, plus per-status counts for the
// filter tabs.
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	query := rc.DB.Model(&models.Reservation{}).Preload("Customer")

	if status := c.Query("status"); status != "" {
		if !models.IsValidStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("unknown status filter"))
			return
		}
		query = query.Where("status = ?", status)
	}

	if from := c.Query("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("created_at <= ?", to+" 23:59:59")
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Joins("JOIN customers ON customers.id = reservations.customer_id").
			Where("reservations.confirmation_number LIKE ? OR customers.name LIKE ? OR customers.email LIKE ?",
				like, like, like)
	}

	var reservations []models.Reservation
	if err := query.Order("reservations.created_at DESC").Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	statusCounts := map[string]int64{}
	for _, status := range []string{models.StatusPending, models.StatusReady, models.StatusCompleted, models.StatusCancelled} {
		var count int64
		rc.DB.Model(&models.Reservation{}).Where("status = ?", status).Count(&count)
		statusCounts[status] = count
	}

	utils.RespondJSON(c, http.StatusOK, "List of reservations", gin.H{
		"reservations":  reservations,
		"status_counts": statusCounts,
	})
}

// GetReservation returns the reservation plus the customer's other
// visits for context.
func (rc *ReservationController) GetReservation(c *gin.Context) {
	var reservation models.Reservation
	err := rc.DB.Preload("Items").Preload("Customer").Preload("Processor").
		First(&reservation, c.Param("id")).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	var history []models.Reservation
	rc.DB.Where("customer_id = ? AND id <> ?", reservation.CustomerID, reservation.ID).
		Order("created_at DESC").
		Limit(10).
		Find(&history)

	utils.RespondJSON(c, http.StatusOK, "Reservation detail", gin.H{
		"reservation":      reservation,
		"customer_history": history,
	})
}

// UpdateStatus moves a reservation through its lifecycle.
func (rc *ReservationController) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	adminID, _ := c.Get("user_id")
	userID, _ := adminID.(uint)

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	updated, err := rc.Reservations.UpdateStatus(reservation.ID, input.Status, input.Notes, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownStatus):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, services.ErrStatusUnchanged), errors.Is(err, services.ErrIllegalTransition):
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
		case errors.Is(err, services.ErrReservationNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.InfoLogger.Printf("Reservation %s moved to %s by user %d",
		updated.ConfirmationNumber, updated.Status, userID)

	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", updated)
}
