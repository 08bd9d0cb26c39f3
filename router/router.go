package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucianoNicacio/palm-cost-vape/config"
	"github.com/LucianoNicacio/palm-cost-vape/controllers"
	"github.com/LucianoNicacio/palm-cost-vape/middlewares"
	"github.com/LucianoNicacio/palm-cost-vape/services"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, cart *services.CartService, reservations *services.ReservationService) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// 3 submissions per IP per hour
	checkoutLimiter := middlewares.NewRateLimiter(3, 3600)

	ageCtrl := controllers.NewAgeController(db)
	catalogCtrl := controllers.NewCatalogController(db)
	cartCtrl := controllers.NewCartController(db, cart)
	checkoutCtrl := controllers.NewCheckoutController(db, cart, reservations, checkoutLimiter, cfg.MinimumAge)
	accountCtrl := controllers.NewAccountController(db, cart, cfg.MinimumAge)
	productCtrl := controllers.NewProductController(db)
	categoryCtrl := controllers.NewCategoryController(db)
	customerCtrl := controllers.NewCustomerController(db)
	reservationCtrl := controllers.NewReservationController(db, reservations)
	dashboardCtrl := controllers.NewDashboardController(db)
	importCtrl := controllers.NewImportController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.POST("/age-verification", ageCtrl.Verify)
	r.GET("/age-verification", ageCtrl.Status)

	r.GET("/reservations/:code", checkoutCtrl.Confirmation)

	authPublic := r.Group("/")
	authPublic.Use(middlewares.NewStrictRateLimiter())
	{
		authPublic.POST("/register", accountCtrl.Register)
		authPublic.POST("/login", accountCtrl.Login)
	}

	// Catalog, cart and checkout sit behind the age gate.
	shop := r.Group("/")
	shop.Use(middlewares.RequireAgeVerification())
	{
		shop.GET("/home", catalogCtrl.Home)
		shop.GET("/shop", catalogCtrl.Shop)
		shop.GET("/products/:id", catalogCtrl.Product)
		shop.GET("/categories", catalogCtrl.Categories)

		shop.GET("/cart", cartCtrl.Get)
		shop.GET("/cart/count", cartCtrl.Count)
		shop.POST("/cart", cartCtrl.Add)
		shop.PATCH("/cart", cartCtrl.Update)
		shop.DELETE("/cart", cartCtrl.Remove)
		shop.DELETE("/cart/all", cartCtrl.Clear)

		checkout := shop.Group("/checkout")
		checkout.Use(middlewares.OptionalAuth())
		{
			checkout.GET("", checkoutCtrl.Show)
			checkout.POST("", checkoutCtrl.Submit)
		}
	}

	// ----------------------------------------------------------------
	//                      CUSTOMER ACCOUNT
	// ----------------------------------------------------------------
	account := r.Group("/account")
	account.Use(middlewares.AuthMiddleware())
	{
		account.POST("/logout", accountCtrl.Logout)
		account.GET("/dashboard", accountCtrl.Dashboard)
		account.GET("/profile", accountCtrl.Profile)
		account.PATCH("/profile", accountCtrl.UpdateProfile)
		account.PATCH("/password", accountCtrl.UpdatePassword)
		account.GET("/orders", accountCtrl.Orders)
		account.GET("/orders/:id", accountCtrl.Order)
		account.POST("/orders/:id/reorder", accountCtrl.Reorder)
	}

	// ----------------------------------------------------------------
	//                      ADMIN BACK OFFICE
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		admin.GET("/dashboard/stats", dashboardCtrl.Stats)
		admin.GET("/dashboard/daily-revenue", dashboardCtrl.DailyRevenue)
		admin.GET("/dashboard/quick-stats", dashboardCtrl.QuickStats)

		admin.GET("/products", productCtrl.GetAllProducts)
		admin.GET("/products/stats", productCtrl.Stats)
		admin.POST("/products", productCtrl.CreateProduct)
		admin.GET("/products/:id", productCtrl.GetProduct)
		admin.PATCH("/products/:id", productCtrl.UpdateProduct)
		admin.PATCH("/products/:id/stock", productCtrl.UpdateStock)
		admin.DELETE("/products/:id", productCtrl.DeleteProduct)

		admin.POST("/products/import", importCtrl.Import)
		admin.GET("/products/import/template", importCtrl.Template)

		admin.GET("/categories", categoryCtrl.GetAllCategories)
		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PATCH("/categories/reorder", categoryCtrl.Reorder)
		admin.PATCH("/categories/:id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:id", categoryCtrl.DeleteCategory)

		admin.GET("/customers", customerCtrl.GetAllCustomers)
		admin.GET("/customers/export", customerCtrl.ExportCSV)
		admin.GET("/customers/:id", customerCtrl.GetCustomer)
		admin.PATCH("/customers/:id", customerCtrl.UpdateCustomer)

		admin.GET("/reservations", reservationCtrl.GetAllReservations)
		admin.GET("/reservations/:id", reservationCtrl.GetReservation)
		admin.PATCH("/reservations/:id/status", reservationCtrl.UpdateStatus)
	}

	return r
}
