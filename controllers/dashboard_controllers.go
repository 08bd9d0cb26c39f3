package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/models"
	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default: // week
		return now.AddDate(0, 0, -7)
	}
}

// Stats backs the admin dashboard cards for a selected period.
func (dc *DashboardController) Stats(c *gin.Context) {
	period := c.DefaultQuery("period", "week")
	start := periodStart(period, time.Now())

	var reservations int64
	dc.DB.Model(&models.Reservation{}).Where("created_at >= ?", start).Count(&reservations)

	var completed int64
	dc.DB.Model(&models.Reservation{}).
		Where("status = ? AND created_at >= ?", models.StatusCompleted, start).
		Count(&completed)

	var revenue float64
	dc.DB.Model(&models.Reservation{}).
		Where("status = ? AND created_at >= ?", models.StatusCompleted, start).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&revenue)

	var newCustomers int64
	dc.DB.Model(&models.Customer{}).Where("created_at >= ?", start).Count(&newCustomers)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"period":        period,
		"reservations":  reservations,
		"completed":     completed,
		"revenue":       utils.RoundMoney(revenue),
		"new_customers": newCustomers,
	})
}

// DailyRevenue returns completed revenue per day for the last 7 days,
// zero-filled so the chart has no gaps.
func (dc *DashboardController) DailyRevenue(c *gin.Context) {
	now := time.Now()
	type dayRevenue struct {
		Date    string  `json:"date"`
		Revenue float64 `json:"revenue"`
	}

	days := make([]dayRevenue, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		var revenue float64
		dc.DB.Model(&models.Reservation{}).
			Where("status = ? AND created_at >= ? AND created_at < ?", models.StatusCompleted, dayStart, dayEnd).
			Select("COALESCE(SUM(total_price), 0)").
			Scan(&revenue)

		days = append(days, dayRevenue{
			Date:    dayStart.Format("2006-01-02"),
			Revenue: utils.RoundMoney(revenue),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Daily revenue", days)
}

// QuickStats feeds the badge counters in the admin nav.
func (dc *DashboardController) QuickStats(c *gin.Context) {
	var pending, ready int64
	dc.DB.Model(&models.Reservation{}).Where("status = ?", models.StatusPending).Count(&pending)
	dc.DB.Model(&models.Reservation{}).Where("status = ?", models.StatusReady).Count(&ready)

	var lowStock int64
	dc.DB.Model(&models.Product{}).
		Where("track_inventory = ? AND stock > 0 AND stock <= ?", true, lowStockThreshold).
		Count(&lowStock)

	utils.RespondJSON(c, http.StatusOK, "Quick stats", gin.H{
		"pending_reservations": pending,
		"ready_reservations":   ready,
		"low_stock_products":   lowStock,
	})
}
