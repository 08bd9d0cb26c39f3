package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/middlewares"
	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/services"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type CheckoutController struct {
	DB           *gorm.DB
	Cart         *services.CartService
	Reservations *services.ReservationService
	Limiter      *middlewares.RateLimiter
	MinimumAge   int
}

func NewCheckoutController(db *gorm.DB, cart *services.CartService, reservations *services.ReservationService, limiter *middlewares.RateLimiter, minimumAge int) *CheckoutController {
	return &CheckoutController{
		DB:           db,
		Cart:         cart,
		Reservations: reservations,
		Limiter:      limiter,
		MinimumAge:   minimumAge,
	}
}

// Show returns the cart review plus contact prefill for a returning
// customer.
func (cc *CheckoutController) Show(c *gin.Context) {
	cart := utils.GetCart(c)
	lines, totals, err := cc.Cart.BuildCart(cart)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if len(lines) == 0 {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("cart is empty"))
		return
	}

	payload := gin.H{
		"items":  lines,
		"totals": totals,
	}

	if userID, exists := c.Get("user_id"); exists {
		var user models.User
		if err := cc.DB.Preload("Customer").First(&user, userID).Error; err == nil && user.Customer != nil {
			payload["prefill"] = gin.H{
				"name":  user.Customer.Name,
				"email": user.Customer.Email,
				"phone": user.Customer.Phone,
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Checkout review", payload)
}

// Submit places the reservation. The website field is a honeypot that
// must stay empty.
func (cc *CheckoutController) Submit(c *gin.Context) {
	var input struct {
		Name         string `json:"name"`
		Email        string `json:"email" binding:"omitempty,email"`
		Phone        string `json:"phone" binding:"required"`
		DOB          string `json:"dob"`
		IsSubscribed bool   `json:"is_subscribed"`
		Notes        string `json:"notes"`
		Website      string `json:"website"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if input.Website != "" {
		utils.InfoLogger.Printf("checkout honeypot tripped from %s", c.ClientIP())
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("unable to place reservation"))
		return
	}

	if !cc.Limiter.Allow(c.ClientIP()) {
		utils.RespondError(c, http.StatusTooManyRequests, errors.New("too many checkout attempts, please try again later"))
		return
	}

	checkout := services.CheckoutInput{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		IsSubscribed: input.IsSubscribed,
		Notes:        input.Notes,
	}

	if userID, loggedIn := c.Get("user_id"); loggedIn {
		// Identity comes from the account, never the request body, so
		// the reservation always lands in the caller's order history.
		var user models.User
		if err := cc.DB.Preload("Customer").First(&user, userID).Error; err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("account not found"))
			return
		}
		if user.Customer != nil {
			checkout.Name = user.Customer.Name
			checkout.Email = user.Customer.Email
			checkout.DOB = user.Customer.DOB
		} else {
			checkout.Name = user.Name
			checkout.Email = user.Email
		}
	} else {
		if input.Name == "" || input.Email == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("name and email are required"))
			return
		}
		dob, err := time.Parse("2006-01-02", input.DOB)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("date of birth is required"))
			return
		}
		if !services.MeetsAgeRequirement(dob, cc.MinimumAge, time.Now()) {
			utils.RespondError(c, http.StatusUnprocessableEntity,
				fmt.Errorf("you must be at least %d years old to place a reservation", cc.MinimumAge))
			return
		}
		checkout.DOB = &dob
	}

	cart := utils.GetCart(c)
	reservation, err := cc.Reservations.Checkout(cart, checkout)
	if err != nil {
		cc.respondCheckoutError(c, err)
		return
	}

	if err := utils.ClearCart(c); err != nil {
		utils.ErrorLogger.Printf("cart clear after checkout failed: %v", err)
	}

	utils.InfoLogger.Printf("Reservation %s placed for %s (%d items, total %.2f)",
		reservation.ConfirmationNumber, reservation.Customer.Email, reservation.ItemCount, reservation.TotalPrice)

	utils.RespondJSON(c, http.StatusCreated, "Reservation placed", gin.H{
		"confirmation_number": reservation.ConfirmationNumber,
		"total_price":         reservation.TotalPrice,
		"pickup_instructions": "Bring your confirmation number and a valid ID for pickup.",
	})
}

// Confirmation looks up a reservation by its confirmation number. The
// not-found message stays generic so codes cannot be probed.
func (cc *CheckoutController) Confirmation(c *gin.Context) {
	var reservation models.Reservation
	err := cc.DB.Preload("Items").Preload("Customer").
		Where("confirmation_number = ?", c.Param("code")).
		First(&reservation).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation detail", gin.H{
		"confirmation_number": reservation.ConfirmationNumber,
		"status":              reservation.Status,
		"status_label":        reservation.StatusLabel(),
		"items":               reservation.Items,
		"subtotal":            reservation.Subtotal,
		"tax_amount":          reservation.TaxAmount,
		"total_price":         reservation.TotalPrice,
		"created_at":          reservation.CreatedAt,
	})
}

func (cc *CheckoutController) respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("cart is empty"))
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
