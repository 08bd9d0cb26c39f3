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

type CatalogController struct {
	DB *gorm.DB
}

func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{DB: db}
}

// sortColumns whitelists the shop's sort parameter.
var sortColumns = map[string]string{
	"name":       "name ASC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"newest":     "created_at DESC",
}

const shopPageSize = 24

// Home returns the featured products for the landing page.
func (cc *CatalogController) Home(c *gin.Context) {
	var featured []models.Product
	err := cc.DB.Preload("Category").
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("name ASC").
		Limit(8).
		Find(&featured).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Featured products", gin.H{
		"featured": featured,
	})
}

// Shop lists active products with category, search, stock and sort
// filters plus pagination.
func (cc *CatalogController) Shop(c *gin.Context) {
	query := cc.DB.Model(&models.Product{}).Preload("Category").Where("is_active = ?", true)

	if slug := c.Query("category"); slug != "" {
		var category models.Category
		if err := cc.DB.Where("slug = ? AND is_active = ?", slug, true).First(&category).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
			return
		}
		query = query.Where("category_id = ?", category.ID)
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ? OR brand LIKE ?", like, like, like)
	}

	if cast.ToBool(c.Query("in_stock")) {
		query = query.Where("track_inventory = ? OR stock > 0", false)
	}

	order, ok := sortColumns[c.DefaultQuery("sort", "name")]
	if !ok {
		order = sortColumns["name"]
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

	var products []models.Product
	err := query.Order(order).
		Limit(shopPageSize).
		Offset((page - 1) * shopPageSize).
		Find(&products).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product list", gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"pages":    (total + shopPageSize - 1) / shopPageSize,
	})
}

// Product returns one active product by slug-free numeric id.
func (cc *CatalogController) Product(c *gin.Context) {
	var product models.Product
	err := cc.DB.Preload("Category").
		Where("id = ? AND is_active = ?", c.Param("id"), true).
		First(&product).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

// Categories lists the active categories in display order, each with
// its active product count.
func (cc *CatalogController) Categories(c *gin.Context) {
	var categories []models.Category
	err := cc.DB.Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	list := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		var products int64
		cc.DB.Model(&models.Product{}).
			Where("category_id = ? AND is_active = ?", category.ID, true).
			Count(&products)
		list = append(list, gin.H{
			"id":            category.ID,
			"code":          category.Code,
			"name":          category.Name,
			"slug":          category.Slug,
			"description":   category.Description,
			"sort_order":    category.SortOrder,
			"product_count": products,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Category list", list)
}
