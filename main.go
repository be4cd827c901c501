package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gabbymorgan/drivefair.api/config"
	"github.com/gabbymorgan/drivefair.api/controllers"
	"github.com/gabbymorgan/drivefair.api/middleware"
	"github.com/gabbymorgan/drivefair.api/models"
	"github.com/gabbymorgan/drivefair.api/services"
)

func main() {
	log.Println("Starting DriveFair API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Vendor{},
		&models.Driver{},
		&models.Address{},
		&models.Modification{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.DriverRequest{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Services
	services.InitAuthService()
	services.InitPaymentGateway()
	hub := services.NewPushHub()
	services.InitNotifiers(hub)
	services.InitActivitySink()
	services.InitLocationCache()
	services.InitDispatchService(cfg.DriverRequestTTL)

	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Printf("S3 unavailable, image uploads disabled: %v", err)
	} else {
		services.InitImageService(s3Service)
	}

	router := setupRouter(hub)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(hub *services.PushHub) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.RecordActivity())

	router.GET("/health", healthCheck)
	router.GET("/database/status", databaseStatus)

	customers := router.Group("/customers")
	{
		customers.POST("/register", controllers.RegisterCustomer)
		customers.POST("/login", controllers.LoginCustomer)
		customers.GET("/confirmEmail", controllers.ConfirmCustomerEmail)

		authed := customers.Group("", middleware.RequireActor(services.RoleCustomer))
		authed.GET("/me", controllers.GetCustomerProfile)
		authed.POST("/addAddress", controllers.AddAddress)
		authed.POST("/selectAddress", controllers.SelectAddress)
		authed.GET("/addresses", controllers.GetAddresses)
	}

	vendors := router.Group("/vendors")
	{
		vendors.POST("/register", controllers.RegisterVendor)
		vendors.POST("/login", controllers.LoginVendor)
		vendors.GET("/confirmEmail", controllers.ConfirmVendorEmail)
		vendors.GET("", controllers.ListVendors)
		vendors.GET("/:vendorId", controllers.GetVendor)

		authed := vendors.Group("", middleware.RequireActor(services.RoleVendor))
		authed.GET("/me", controllers.GetVendorProfile)
		authed.POST("/editVendor", controllers.EditVendor)
		authed.POST("/logo", controllers.UploadVendorLogo)
		authed.POST("/addMenuItem", controllers.AddMenuItem)
		authed.POST("/editMenuItem", controllers.EditMenuItem)
		authed.POST("/removeMenuItem", controllers.RemoveMenuItem)
		authed.POST("/menuItemImage/:menuItemId", controllers.UploadMenuItemImage)
		authed.POST("/addModification", controllers.AddModification)
		authed.POST("/editModification", controllers.EditModification)
		authed.POST("/removeModification", controllers.RemoveModification)
	}

	orders := router.Group("/orders")
	{
		customerOnly := middleware.RequireActor(services.RoleCustomer)
		vendorOnly := middleware.RequireActor(services.RoleVendor)

		orders.GET("/cart", customerOnly, controllers.GetCart)
		orders.POST("/addToCart", customerOnly, controllers.AddToCart)
		orders.POST("/removeFromCart", customerOnly, controllers.RemoveFromCart)
		orders.POST("/setTip", customerOnly, controllers.SetTip)
		orders.POST("/customerSetOrderMethod", customerOnly, controllers.CustomerSetOrderMethod)
		orders.POST("/pay", customerOnly, controllers.Pay)
		orders.POST("/customerPickUpOrder", customerOnly, controllers.CustomerPickUpOrder)
		orders.GET("/track/:orderId", customerOnly, controllers.TrackOrder)

		orders.GET("/active", middleware.RequireActor(services.RoleCustomer, services.RoleVendor), controllers.ActiveOrders)
		orders.GET("/ready", middleware.RequireActor(services.RoleCustomer, services.RoleVendor), controllers.ReadyOrders)
		orders.GET("/history", middleware.RequireActor(services.RoleCustomer, services.RoleVendor, services.RoleDriver), controllers.OrderHistory)

		orders.POST("/vendorAcceptOrder", vendorOnly, controllers.VendorAcceptOrder)
		orders.POST("/readyOrder", vendorOnly, controllers.ReadyOrder)
		orders.POST("/refundOrder", vendorOnly, controllers.RefundOrder)
		orders.POST("/requestDrivers", vendorOnly, controllers.RequestDrivers)
	}

	drivers := router.Group("/drivers")
	{
		drivers.POST("/register", controllers.RegisterDriver)
		drivers.POST("/login", controllers.LoginDriver)
		drivers.GET("/active", middleware.RequireActor(services.RoleVendor), controllers.ListActiveDrivers)

		authed := drivers.Group("", middleware.RequireActor(services.RoleDriver))
		authed.GET("/me", controllers.GetDriverProfile)
		authed.POST("/toggleStatus", controllers.ToggleStatus)
		authed.POST("/setLocation", controllers.SetLocation)
		authed.POST("/addDeviceToken", controllers.AddDeviceToken)
	}

	route := router.Group("/route", middleware.RequireActor(services.RoleDriver))
	{
		route.GET("", controllers.GetRoute)
		route.POST("/acceptOrder", controllers.AcceptOrder)
		route.POST("/pickUpOrder", controllers.PickUpOrder)
		route.POST("/deliverOrder", controllers.DeliverOrder)
		route.POST("/rejectOrder", controllers.RejectOrder)
	}

	router.GET("/ws/drivers", middleware.RequireActor(services.RoleDriver), controllers.DriverSocket(hub))

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "DriveFair API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
