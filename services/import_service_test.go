package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucianoNicacio/palm-cost-vape/models"
)

const importHeader = "id,name,sku,price,tax,status,track_inv,on_hand,category\n"

func TestImportCreatesProductsAndCategories(t *testing.T) {
	db := setupServiceDB(t)
	importer := NewProductImporter(db)

	csv := importHeader +
		"4358027,Raz 25K,01007,26.99,true,active,true,49,01-Disposables-Nic\n" +
		"4358030,Hand Pipe Blue,02001,19.99,false,active,true,12,02-Glass\n"

	result, err := importer.Import(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Skipped)

	var category models.Category
	require.NoError(t, db.Where("code = ?", "01").First(&category).Error)
	assert.Equal(t, "Disposables-Nic", category.Name)
	assert.Equal(t, "disposables-nic", category.Slug)
	assert.Equal(t, 1, category.SortOrder)

	var product models.Product
	require.NoError(t, db.Where("sku = ?", "01007").First(&product).Error)
	assert.Equal(t, "Raz 25K", product.Name)
	assert.InDelta(t, 26.99, product.Price, 0.0001)
	assert.True(t, product.IsTaxable)
	assert.True(t, product.TrackInventory)
	assert.Equal(t, 49, product.Stock)
	assert.Equal(t, "4358027", product.ExternalID)
	require.NotNil(t, product.CategoryID)
	assert.Equal(t, category.ID, *product.CategoryID)

	var glass models.Product
	require.NoError(t, db.Where("sku = ?", "02001").First(&glass).Error)
	assert.False(t, glass.IsTaxable)
}

func TestImportUpdatesExistingSKU(t *testing.T) {
	db := setupServiceDB(t)
	importer := NewProductImporter(db)

	first := importHeader + "1,Raz 25K,01007,26.99,true,active,true,49,01-Disposables-Nic\n"
	_, err := importer.Import(strings.NewReader(first))
	require.NoError(t, err)

	second := importHeader + "1,Raz 25K Pro,01007,29.99,true,active,true,30,01-Disposables-Nic\n"
	result, err := NewProductImporter(db).Import(strings.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, result.Created)

	var product models.Product
	require.NoError(t, db.Where("sku = ?", "01007").First(&product).Error)
	assert.Equal(t, "Raz 25K Pro", product.Name)
	assert.InDelta(t, 29.99, product.Price, 0.0001)
	assert.Equal(t, 30, product.Stock)

	// the re-import reused the category instead of duplicating it
	var categories int64
	db.Model(&models.Category{}).Where("code = ?", "01").Count(&categories)
	assert.EqualValues(t, 1, categories)
}

func TestImportAssignsNumericSKUWhenBlank(t *testing.T) {
	db := setupServiceDB(t)
	importer := NewProductImporter(db)

	csv := importHeader + "9,No SKU Item,,9.99,yes,active,1,5,03-Accessories\n"
	result, err := importer.Import(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	var product models.Product
	require.NoError(t, db.Where("name = ?", "No SKU Item").First(&product).Error)
	assert.Equal(t, "100001", product.SKU)
	assert.True(t, product.IsTaxable)
	assert.True(t, product.TrackInventory)
}

func TestImportSkipsRowsWithoutCategoryOrName(t *testing.T) {
	db := setupServiceDB(t)
	importer := NewProductImporter(db)

	csv := importHeader +
		"1,Orphan Product,05001,5.00,true,active,true,3,\n" +
		"2,,05002,5.00,true,active,true,3,05-Misc\n"

	result, err := importer.Import(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 2, result.Skipped)

	var products int64
	db.Model(&models.Product{}).Count(&products)
	assert.Zero(t, products)
}

func TestImportInactiveStatus(t *testing.T) {
	db := setupServiceDB(t)
	importer := NewProductImporter(db)

	csv := importHeader + "1,Retired Flavor,06001,12.00,true,discontinued,true,0,06-Clearance\n"
	_, err := importer.Import(strings.NewReader(csv))
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, db.Where("sku = ?", "06001").First(&product).Error)
	assert.False(t, product.IsActive)
}

func TestUniqueCategorySlugSuffixes(t *testing.T) {
	db := setupServiceDB(t)

	require.NoError(t, db.Create(&models.Category{Code: "10", Name: "Glass", Slug: "glass"}).Error)

	slug, err := UniqueCategorySlug(db, "glass", 0)
	require.NoError(t, err)
	assert.Equal(t, "glass-1", slug)

	// the category owning the slug keeps it on rename
	var existing models.Category
	require.NoError(t, db.Where("slug = ?", "glass").First(&existing).Error)
	slug, err = UniqueCategorySlug(db, "glass", existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "glass", slug)
}

func TestProductTemplateCSV(t *testing.T) {
	assert.True(t, strings.HasPrefix(ProductTemplateCSV, importHeader))
}
