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

type CategoryController struct {
	DB *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	if err := cc.DB.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var input struct {
		Code        string `json:"code" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		SortOrder   int    `json:"sort_order"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	cc.DB.Model(&models.Category{}).Where("code = ?", input.Code).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("a category with this code already exists"))
		return
	}

	slug, err := services.UniqueCategorySlug(cc.DB, utils.Slugify(input.Name), 0)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	category := models.Category{
		Code:        input.Code,
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		SortOrder:   input.SortOrder,
		IsActive:    boolOr(input.IsActive, true),
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := cc.DB.First(&category, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	var input struct {
		Code        string `json:"code" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		SortOrder   int    `json:"sort_order"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if input.Code != category.Code {
		var count int64
		cc.DB.Model(&models.Category{}).Where("code = ? AND id <> ?", input.Code, category.ID).Count(&count)
		if count > 0 {
			utils.RespondError(c, http.StatusConflict, errors.New("a category with this code already exists"))
			return
		}
	}

	if input.Name != category.Name {
		slug, err := services.UniqueCategorySlug(cc.DB, utils.Slugify(input.Name), category.ID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		category.Slug = slug
	}

	category.Code = input.Code
	category.Name = input.Name
	category.Description = input.Description
	category.SortOrder = input.SortOrder
	category.IsActive = boolOr(input.IsActive, category.IsActive)

	if err := cc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory refuses while products still reference the category.
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	var category models.Category
	if err := cc.DB.First(&category, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	var products int64
	cc.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&products)
	if products > 0 {
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New("category still has products, reassign them first"))
		return
	}

	if err := cc.DB.Delete(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}

// Reorder saves a new sort_order from an ordered list of ids.
func (cc *CategoryController) Reorder(c *gin.Context) {
	var input struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tx := cc.DB.Begin()
	for position, id := range input.IDs {
		if err := tx.Model(&models.Category{}).Where("id = ?", id).
			UpdateColumn("sort_order", position+1).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Categories reordered", nil)
}
