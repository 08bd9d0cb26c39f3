package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/controllers"
	"github.com/LucianoNicacio/palm-cost-vape/middlewares"
	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/services"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

func setupControllerDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	utils.InitSessionStore("test-session-secret")

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

func setupShopRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cart := services.NewCartService(db, 0.07)
	reservations := services.NewReservationService(db, 0.07, nil)
	limiter := middlewares.NewRateLimiter(3, 3600)

	cartCtrl := controllers.NewCartController(db, cart)
	checkoutCtrl := controllers.NewCheckoutController(db, cart, reservations, limiter, 21)

	r := gin.New()
	r.GET("/cart", cartCtrl.Get)
	r.POST("/cart", cartCtrl.Add)
	r.POST("/checkout", middlewares.OptionalAuth(), checkoutCtrl.Submit)
	r.GET("/reservations/:code", checkoutCtrl.Confirmation)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doAuthJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}, cookies []*http.Cookie, token string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func checkoutPayload(dob string) map[string]interface{} {
	return map[string]interface{}{
		"name":  "Jane Doe",
		"email": "jane@example.com",
		"phone": "386-555-0100",
		"dob":   dob,
	}
}

func TestCartAddRejectLeavesCartUnchanged(t *testing.T) {
	db := setupControllerDB(t)
	r := setupShopRouter(t, db)

	product := models.Product{
		SKU: "CTL-1", Name: "Scarce Vape", Price: 10.00,
		IsTaxable: true, TrackInventory: true, Stock: 5, IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	w := doJSON(t, r, "POST", "/cart", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   10,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// the cart stays empty after the rejected add
	w = doJSON(t, r, "GET", "/cart", nil, w.Result().Cookies())
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items []json.RawMessage `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)
}

func TestCheckoutHoneypotRejects(t *testing.T) {
	db := setupControllerDB(t)
	r := setupShopRouter(t, db)

	payload := checkoutPayload("1990-01-01")
	payload["website"] = "http://spam.example.com"

	w := doJSON(t, r, "POST", "/checkout", payload, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var reservations int64
	db.Model(&models.Reservation{}).Count(&reservations)
	assert.Zero(t, reservations)
}

func TestCheckoutAgeBoundary(t *testing.T) {
	db := setupControllerDB(t)
	r := setupShopRouter(t, db)

	product := models.Product{
		SKU: "CTL-2", Name: "Checkout Vape", Price: 10.00,
		IsTaxable: true, TrackInventory: true, Stock: 20, IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	w := doJSON(t, r, "POST", "/cart", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	// one day short of 21
	tooYoung := time.Now().AddDate(-21, 0, 1).Format("2006-01-02")
	w = doJSON(t, r, "POST", "/checkout", checkoutPayload(tooYoung), cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// 21 to the day passes
	exactly21 := time.Now().AddDate(-21, 0, 0).Format("2006-01-02")
	w = doJSON(t, r, "POST", "/checkout", checkoutPayload(exactly21), cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ConfirmationNumber string `json:"confirmation_number"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Data.ConfirmationNumber, "PCV-"))

	// the confirmation page resolves the code
	w = doJSON(t, r, "GET", "/reservations/"+resp.Data.ConfirmationNumber, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// probing an unknown code stays generic
	w = doJSON(t, r, "GET", "/reservations/PCV-ZZZZZZ", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutMissingDOBRejected(t *testing.T) {
	db := setupControllerDB(t)
	r := setupShopRouter(t, db)

	payload := checkoutPayload("")
	w := doJSON(t, r, "POST", "/checkout", payload, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutGuestRequiresNameAndEmail(t *testing.T) {
	db := setupControllerDB(t)
	r := setupShopRouter(t, db)

	w := doJSON(t, r, "POST", "/checkout", map[string]interface{}{
		"phone": "386-555-0100",
		"dob":   "1990-01-01",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutAuthenticatedUsesAccountIdentity(t *testing.T) {
	db := setupControllerDB(t)
	r := setupShopRouter(t, db)

	product := models.Product{
		SKU: "CTL-3", Name: "Member Vape", Price: 10.00,
		IsTaxable: true, TrackInventory: true, Stock: 10, IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	dob := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	customer := models.Customer{
		Name: "Account Holder", Email: "holder@example.com",
		Phone: "386-555-0400", DOB: &dob, Source: "account",
	}
	require.NoError(t, db.Create(&customer).Error)

	user := models.User{
		Name: "Account Holder", Email: "holder@example.com",
		Password: "irrelevant", Role: models.RoleCustomer, CustomerID: &customer.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, models.RoleCustomer)
	require.NoError(t, err)

	w := doJSON(t, r, "POST", "/cart", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	// posted identity fields are ignored, no dob needed
	w = doAuthJSON(t, r, "POST", "/checkout", map[string]interface{}{
		"name":  "Someone Else",
		"email": "other@example.com",
		"phone": "386-555-0500",
	}, cookies, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var reservation models.Reservation
	require.NoError(t, db.Preload("Customer").First(&reservation).Error)
	assert.Equal(t, customer.ID, reservation.CustomerID)
	assert.Equal(t, "holder@example.com", reservation.Customer.Email)
	assert.Equal(t, "Account Holder", reservation.Customer.Name)
	assert.Equal(t, "386-555-0500", reservation.Customer.Phone)

	var strays int64
	db.Model(&models.Customer{}).Where("email = ?", "other@example.com").Count(&strays)
	assert.Zero(t, strays)
}

func TestCheckoutRateLimited(t *testing.T) {
	db := setupControllerDB(t)
	r := setupShopRouter(t, db)

	dob := "1990-01-01"
	for i := 0; i < 3; i++ {
		w := doJSON(t, r, "POST", "/checkout", checkoutPayload(dob), nil)
		// empty cart, but each attempt still consumes a slot
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	}

	w := doJSON(t, r, "POST", "/checkout", checkoutPayload(dob), nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAgeVerificationFlow(t *testing.T) {
	db := setupControllerDB(t)
	gin.SetMode(gin.TestMode)

	ageCtrl := controllers.NewAgeController(db)
	r := gin.New()
	r.POST("/age-verification", ageCtrl.Verify)
	r.GET("/age-verification", ageCtrl.Status)

	gated := r.Group("/")
	gated.Use(middlewares.RequireAgeVerification())
	gated.GET("/shop", func(c *gin.Context) { c.Status(http.StatusOK) })

	// gated routes reject unverified sessions
	w := doJSON(t, r, "GET", "/shop", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, "POST", "/age-verification", map[string]interface{}{"confirmed": false}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, "POST", "/age-verification", map[string]interface{}{"confirmed": true}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	w = doJSON(t, r, "GET", "/shop", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	// the audit row was written
	var audits int64
	db.Model(&models.AgeVerification{}).Count(&audits)
	assert.EqualValues(t, 1, audits)
}
