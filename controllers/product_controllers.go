package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

const lowStockThreshold = 5

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

type productInput struct {
	SKU            string  `json:"sku" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	Brand          string  `json:"brand"`
	Price          float64 `json:"price" binding:"required,gt=0"`
	IsTaxable      *bool   `json:"is_taxable"`
	TrackInventory *bool   `json:"track_inventory"`
	Stock          int     `json:"stock" binding:"gte=0"`
	CategoryID     *uint   `json:"category_id"`
	IsActive       *bool   `json:"is_active"`
	IsFeatured     *bool   `json:"is_featured"`
}

// GetAllProducts lists the full catalog for the back office, with
// status, category, stock and search filters.
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	query := pc.DB.Model(&models.Product{}).Preload("Category")

	switch c.Query("status") {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	switch c.Query("stock") {
	case "low_stock":
		query = query.Where("track_inventory = ? AND stock > 0 AND stock <= ?", true, lowStockThreshold)
	case "out_of_stock":
		query = query.Where("track_inventory = ? AND stock <= 0", true)
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ? OR brand LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	page := cast.ToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := cast.ToInt(c.DefaultQuery("per_page", "50"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var products []models.Product
	if err := query.Order("name ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of products", gin.H{
		"products": products,
		"total":    total,
		"page":     page,
	})
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	var product models.Product
	if err := pc.DB.Preload("Category").First(&product, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	pc.DB.Model(&models.Product{}).Where("sku = ?", input.SKU).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("a product with this SKU already exists"))
		return
	}

	product := models.Product{
		SKU:            input.SKU,
		Name:           input.Name,
		Description:    input.Description,
		Brand:          input.Brand,
		Price:          input.Price,
		IsTaxable:      boolOr(input.IsTaxable, true),
		TrackInventory: boolOr(input.TrackInventory, true),
		Stock:          input.Stock,
		CategoryID:     input.CategoryID,
		IsActive:       boolOr(input.IsActive, true),
		IsFeatured:     boolOr(input.IsFeatured, false),
		AgeRestricted:  true,
	}

	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Product created: %s (sku=%s)", product.Name, product.SKU)
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := pc.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if input.SKU != product.SKU {
		var count int64
		pc.DB.Model(&models.Product{}).Where("sku = ? AND id <> ?", input.SKU, product.ID).Count(&count)
		if count > 0 {
			utils.RespondError(c, http.StatusConflict, errors.New("a product with this SKU already exists"))
			return
		}
	}

	product.SKU = input.SKU
	product.Name = input.Name
	product.Description = input.Description
	product.Brand = input.Brand
	product.Price = input.Price
	product.IsTaxable = boolOr(input.IsTaxable, product.IsTaxable)
	product.TrackInventory = boolOr(input.TrackInventory, product.TrackInventory)
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.IsActive = boolOr(input.IsActive, product.IsActive)
	product.IsFeatured = boolOr(input.IsFeatured, product.IsFeatured)

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// UpdateStock adjusts just the on-hand count.
func (pc *ProductController) UpdateStock(c *gin.Context) {
	var input struct {
		Stock int `json:"stock" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}

	if err := pc.DB.Model(&product).UpdateColumn("stock", input.Stock).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Stock for %s set to %d", product.SKU, input.Stock)
	utils.RespondJSON(c, http.StatusOK, "Stock updated", gin.H{
		"product_id": product.ID,
		"stock":      input.Stock,
	})
}

// DeleteProduct soft-deletes so reservation item snapshots keep their
// foreign key.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	var product models.Product
	if err := pc.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}

	if err := pc.DB.Delete(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product deleted", nil)
}

// Stats backs the inventory cards on the product index.
func (pc *ProductController) Stats(c *gin.Context) {
	var total, active, lowStock, outOfStock int64

	pc.DB.Model(&models.Product{}).Count(&total)
	pc.DB.Model(&models.Product{}).Where("is_active = ?", true).Count(&active)
	pc.DB.Model(&models.Product{}).
		Where("track_inventory = ? AND stock > 0 AND stock <= ?", true, lowStockThreshold).
		Count(&lowStock)
	pc.DB.Model(&models.Product{}).
		Where("track_inventory = ? AND stock <= 0", true).
		Count(&outOfStock)

	utils.RespondJSON(c, http.StatusOK, "Product stats", gin.H{
		"total":        total,
		"active":       active,
		"low_stock":    lowStock,
		"out_of_stock": outOfStock,
	})
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
