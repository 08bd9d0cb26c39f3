package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	query := cc.DB.Model(&models.Customer{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	if c.Query("subscribed") == "true" {
		query = query.Where("is_subscribed = ?", true)
	}

	var customers []models.Customer
	if err := query.Order("created_at DESC").Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// GetCustomer returns the customer with their reservation history.
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	var customer models.Customer
	if err := cc.DB.First(&customer, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	var reservations []models.Reservation
	cc.DB.Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Find(&reservations)

	utils.RespondJSON(c, http.StatusOK, "Customer detail", gin.H{
		"customer":     customer,
		"reservations": reservations,
	})
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := cc.DB.First(&customer, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	var input struct {
		Name         string `json:"name" binding:"required"`
		Phone        string `json:"phone"`
		IsSubscribed *bool  `json:"is_subscribed"`
		Notes        string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer.Name = input.Name
	customer.Phone = input.Phone
	if input.IsSubscribed != nil {
		customer.IsSubscribed = *input.IsSubscribed
	}
	customer.Notes = input.Notes

	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// ExportCSV streams the customer list as a spreadsheet download.
func (cc *CustomerController) ExportCSV(c *gin.Context) {
	query := cc.DB.Order("created_at ASC")
	if c.Query("subscribed_only") == "true" {
		query = query.Where("is_subscribed = ?", true)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("Name,Email,Phone,Subscribed,Total Orders,Total Spent,Created\n")
	for _, customer := range customers {
		subscribed := "No"
		if customer.IsSubscribed {
			subscribed = "Yes"
		}
		sb.WriteString(fmt.Sprintf("\"%s\",\"%s\",\"%s\",%s,%d,%.2f,\"%s\"\n",
			customer.Name,
			customer.Email,
			customer.Phone,
			subscribed,
			customer.TotalReservations,
			customer.TotalSpent,
			customer.CreatedAt.Format("2006-01-02"),
		))
	}

	filename := fmt.Sprintf("customers-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", []byte(sb.String()))
}
