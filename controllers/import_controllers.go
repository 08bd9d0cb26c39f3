package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/services"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type ImportController struct {
	DB *gorm.DB
}

func NewImportController(db *gorm.DB) *ImportController {
	return &ImportController{DB: db}
}

// Import takes a multipart CSV upload and runs the product importer.
func (ic *ImportController) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("a csv file is required"))
		return
	}

	f, err := file.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unable to read upload"))
		return
	}
	defer f.Close()

	importer := services.NewProductImporter(ic.DB)
	result, err := importer.Import(f)
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	utils.InfoLogger.Printf("Product import: %d created, %d updated, %d skipped",
		result.Created, result.Updated, result.Skipped)

	utils.RespondJSON(c, http.StatusOK, "Import complete", result)
}

// Template serves the CSV header with one example row.
func (ic *ImportController) Template(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=product-import-template.csv")
	c.Data(http.StatusOK, "text/csv", []byte(services.ProductTemplateCSV))
}
