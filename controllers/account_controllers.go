package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/services"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type AccountController struct {
	DB         *gorm.DB
	Cart       *services.CartService
	MinimumAge int
}

func NewAccountController(db *gorm.DB, cart *services.CartService, minimumAge int) *AccountController {
	return &AccountController{DB: db, Cart: cart, MinimumAge: minimumAge}
}

// Register creates a customer login. A guest customer row with the
// same email gets linked instead of duplicated.
func (ac *AccountController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required,min=8"`
		DOB      string `json:"dob" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid date of birth"))
		return
	}
	if !services.MeetsAgeRequirement(dob, ac.MinimumAge, time.Now()) {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("you do not meet the minimum age requirement"))
		return
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("an account with this email already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var customer models.Customer
	err = ac.DB.Where("email = ?", req.Email).First(&customer).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		customer = models.Customer{
			Name:   req.Name,
			Email:  req.Email,
			Phone:  req.Phone,
			DOB:    &dob,
			Source: "account",
		}
		if err := ac.DB.Create(&customer).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	default:
		customer.Name = req.Name
		if req.Phone != "" {
			customer.Phone = req.Phone
		}
		customer.DOB = &dob
		if err := ac.DB.Save(&customer).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	user := models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hashed),
		Role:       models.RoleCustomer,
		CustomerID: &customer.ID,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New account registered: %s", user.Email)

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Account created", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Login returns a JWT. Admins get an is_admin flag so the frontend can
// redirect them to the back office.
func (ac *AccountController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Login: %s (role=%s)", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":    token,
		"is_admin": user.IsAdmin(),
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Logout is stateless: the client discards the token. The endpoint
// exists so the frontend has something to call.
func (ac *AccountController) Logout(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (ac *AccountController) currentUser(c *gin.Context) (*models.User, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return nil, errors.New("not authenticated")
	}
	var user models.User
	if err := ac.DB.Preload("Customer").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Dashboard summarizes the customer's reservation history.
func (ac *AccountController) Dashboard(c *gin.Context) {
	user, err := ac.currentUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	payload := gin.H{
		"name":  user.Name,
		"email": user.Email,
	}

	if user.CustomerID != nil {
		var recent []models.Reservation
		ac.DB.Where("customer_id = ?", *user.CustomerID).
			Order("created_at DESC").
			Limit(5).
			Find(&recent)
		payload["recent_reservations"] = recent
		if user.Customer != nil {
			payload["total_reservations"] = user.Customer.TotalReservations
			payload["total_spent"] = user.Customer.TotalSpent
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Account dashboard", payload)
}

func (ac *AccountController) Profile(c *gin.Context) {
	user, err := ac.currentUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	payload := gin.H{
		"name":  user.Name,
		"email": user.Email,
	}
	if user.Customer != nil {
		payload["phone"] = user.Customer.Phone
		payload["is_subscribed"] = user.Customer.IsSubscribed
	}

	utils.RespondJSON(c, http.StatusOK, "Profile", payload)
}

// UpdateProfile changes name, phone and mailing list preference. Email
// is the customer natural key and stays fixed.
func (ac *AccountController) UpdateProfile(c *gin.Context) {
	var input struct {
		Name         string `json:"name" binding:"required"`
		Phone        string `json:"phone"`
		IsSubscribed *bool  `json:"is_subscribed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := ac.currentUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	user.Name = input.Name
	if err := ac.DB.Save(user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if user.Customer != nil {
		user.Customer.Name = input.Name
		user.Customer.Phone = input.Phone
		if input.IsSubscribed != nil {
			user.Customer.IsSubscribed = *input.IsSubscribed
		}
		if err := ac.DB.Save(user.Customer).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Profile updated", nil)
}

func (ac *AccountController) UpdatePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := ac.currentUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("current password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user.Password = string(hashed)
	if err := ac.DB.Save(user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Password updated", nil)
}

// Orders lists the customer's reservations, newest first.
func (ac *AccountController) Orders(c *gin.Context) {
	user, err := ac.currentUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	if user.CustomerID == nil {
		utils.RespondJSON(c, http.StatusOK, "Reservation history", []models.Reservation{})
		return
	}

	var reservations []models.Reservation
	err = ac.DB.Preload("Items").
		Where("customer_id = ?", *user.CustomerID).
		Order("created_at DESC").
		Find(&reservations).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation history", reservations)
}

func (ac *AccountController) Order(c *gin.Context) {
	user, err := ac.currentUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	reservation, err := ac.ownReservation(c, user)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

// Reorder rebuilds the cart from a past reservation. Quantities cap at
// current stock and dropped lines are reported back.
func (ac *AccountController) Reorder(c *gin.Context) {
	user, err := ac.currentUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	reservation, err := ac.ownReservation(c, user)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	cart := utils.GetCart(c)
	var unavailable []string

	for _, item := range reservation.Items {
		if item.ProductID == nil {
			unavailable = append(unavailable, item.ProductName)
			continue
		}

		var product models.Product
		if err := ac.DB.First(&product, *item.ProductID).Error; err != nil || !product.IsActive {
			unavailable = append(unavailable, item.ProductName)
			continue
		}

		quantity := item.Quantity
		if product.TrackInventory && product.Stock < quantity {
			quantity = product.Stock
		}
		if quantity <= 0 {
			unavailable = append(unavailable, item.ProductName)
			continue
		}
		cart[product.ID] = quantity
	}

	if err := utils.SaveCart(c, cart); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Items added to cart", gin.H{
		"unavailable": unavailable,
	})
}

func (ac *AccountController) ownReservation(c *gin.Context, user *models.User) (*models.Reservation, error) {
	if user.CustomerID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	var reservation models.Reservation
	err := ac.DB.Preload("Items").
		Where("id = ? AND customer_id = ?", c.Param("id"), *user.CustomerID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
