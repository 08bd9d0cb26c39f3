package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

// ProductTemplateCSV is what the template download hands out: the
// fixed header plus one example row.
const ProductTemplateCSV = "id,name,sku,price,tax,status,track_inv,on_hand,category\n" +
	"4358027,Raz 25K,01007,26.99,true,active,true,49,01-Disposables-Nic\n"

type productRow struct {
	ExternalID string `csv:"id"`
	Name       string `csv:"name"`
	SKU        string `csv:"sku"`
	Price      string `csv:"price"`
	Tax        string `csv:"tax"`
	Status     string `csv:"status"`
	TrackInv   string `csv:"track_inv"`
	OnHand     string `csv:"on_hand"`
	Category   string `csv:"category"`
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ProductImporter loads supplier spreadsheets. Existing SKUs update in
// place, new SKUs insert, and rows without a category are skipped.
type ProductImporter struct {
	db            *gorm.DB
	categoryCache map[string]uint
	nextSKU       int64
}

func NewProductImporter(db *gorm.DB) *ProductImporter {
	return &ProductImporter{db: db, categoryCache: map[string]uint{}}
}

func (pi *ProductImporter) Import(r io.Reader) (*ImportResult, error) {
	var rows []*productRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	result := &ImportResult{}
	for _, row := range rows {
		if err := pi.importRow(row, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (pi *ProductImporter) importRow(row *productRow, result *ImportResult) error {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		result.Skipped++
		return nil
	}

	categoryID, err := pi.categoryID(row.Category)
	if err != nil {
		return err
	}
	if categoryID == 0 {
		result.Skipped++
		return nil
	}

	sku := strings.TrimSpace(row.SKU)
	if sku == "" {
		sku, err = pi.nextNumericSKU()
		if err != nil {
			return err
		}
	}

	isActive := strings.EqualFold(strings.TrimSpace(row.Status), "active") || strings.TrimSpace(row.Status) == ""

	var existing models.Product
	err = pi.db.Where("sku = ?", sku).First(&existing).Error
	switch {
	case err == nil:
		existing.ExternalID = strings.TrimSpace(row.ExternalID)
		existing.Name = name
		existing.Price = cast.ToFloat64(strings.TrimSpace(row.Price))
		existing.IsTaxable = parseBool(row.Tax, true)
		existing.TrackInventory = parseBool(row.TrackInv, true)
		existing.Stock = cast.ToInt(strings.TrimSpace(row.OnHand))
		existing.CategoryID = &categoryID
		existing.IsActive = isActive
		if err := pi.db.Save(&existing).Error; err != nil {
			return err
		}
		result.Updated++
		return nil
	case err == gorm.ErrRecordNotFound:
		product := models.Product{
			ExternalID:     strings.TrimSpace(row.ExternalID),
			SKU:            sku,
			Name:           name,
			Price:          cast.ToFloat64(strings.TrimSpace(row.Price)),
			IsTaxable:      parseBool(row.Tax, true),
			TrackInventory: parseBool(row.TrackInv, true),
			Stock:          cast.ToInt(strings.TrimSpace(row.OnHand)),
			CategoryID:     &categoryID,
			IsActive:       isActive,
			AgeRestricted:  true,
		}
		if err := pi.db.Create(&product).Error; err != nil {
			return err
		}
		result.Created++
		return nil
	default:
		return err
	}
}

// categoryID resolves a "01-Disposables-Nic" style cell, auto-creating
// the category on first sight. Returns 0 for an empty cell.
func (pi *ProductImporter) categoryID(cell string) (uint, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	if id, ok := pi.categoryCache[cell]; ok {
		return id, nil
	}

	parts := strings.SplitN(cell, "-", 2)
	code, name := "00", cell
	if len(parts) == 2 {
		code = strings.TrimSpace(parts[0])
		name = strings.TrimSpace(parts[1])
	}

	var category models.Category
	err := pi.db.Where("code = ?", code).First(&category).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		slug, slugErr := UniqueCategorySlug(pi.db, utils.Slugify(name), 0)
		if slugErr != nil {
			return 0, slugErr
		}
		category = models.Category{
			Code:      code,
			Name:      name,
			Slug:      slug,
			SortOrder: cast.ToInt(code),
			IsActive:  true,
		}
		if err := pi.db.Create(&category).Error; err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	}

	pi.categoryCache[cell] = category.ID
	return category.ID, nil
}

// nextNumericSKU backs rows with a blank SKU: one past the highest
// all-numeric SKU already present.
func (pi *ProductImporter) nextNumericSKU() (string, error) {
	if pi.nextSKU == 0 {
		var skus []string
		if err := pi.db.Model(&models.Product{}).Pluck("sku", &skus).Error; err != nil {
			return "", err
		}
		max := int64(100000)
		for _, s := range skus {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > max {
				max = n
			}
		}
		pi.nextSKU = max
	}
	pi.nextSKU++
	return strconv.FormatInt(pi.nextSKU, 10), nil
}

// parseBool accepts the spreadsheet's loose booleans: true/1/yes.
func parseBool(val string, fallback bool) bool {
	s := strings.ToLower(strings.TrimSpace(val))
	if s == "" {
		return fallback
	}
	return s == "yes" || cast.ToBool(s)
}

// UniqueCategorySlug de-duplicates a slug with a numeric suffix
// (disposables, disposables-1, ...). excludeID skips the category
// being renamed.
func UniqueCategorySlug(db *gorm.DB, base string, excludeID uint) (string, error) {
	if base == "" {
		base = "category"
	}
	slug := base
	for counter := 1; ; counter++ {
		q := db.Model(&models.Category{}).Where("slug = ?", slug)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
