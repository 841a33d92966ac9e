package main

import (
	"net/http"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
	"github.com/DmitriyMikhalev/warehouses/internal/handler"
	mid "github.com/DmitriyMikhalev/warehouses/internal/middleware"
	"github.com/DmitriyMikhalev/warehouses/internal/store"
	"github.com/DmitriyMikhalev/warehouses/pkg/config"
	"github.com/DmitriyMikhalev/warehouses/pkg/database"
	"github.com/DmitriyMikhalev/warehouses/pkg/jwtutil"
	"github.com/DmitriyMikhalev/warehouses/pkg/logger"
	"github.com/DmitriyMikhalev/warehouses/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file; missing file is fine, env vars take over
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting warehouses service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire the consistency engine on top of the GORM store
	svc := engine.NewService(
		store.New(database.GetDB()),
		engine.NewClock(appConfig.Schedule.Location()),
		engine.Horizon{
			MinOffsetDays: appConfig.Schedule.MinOffsetDays,
			MaxOffsetDays: appConfig.Schedule.MaxOffsetDays,
		},
	)
	handler.Init(svc)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Owner API routes
	ownerAPI := e.Group("/api/owners", mid.AuthMiddleware)
	ownerAPI.GET("", handler.ListOwners)
	ownerAPI.GET("/:id", handler.GetOwner)
	ownerAPI.POST("", handler.CreateOwner)
	ownerAPI.PUT("/:id", handler.UpdateOwner)
	ownerAPI.DELETE("/:id", handler.DeleteOwner)

	// Warehouse API routes
	warehouseAPI := e.Group("/api/warehouses", mid.AuthMiddleware)
	warehouseAPI.GET("", handler.ListWarehouses)
	warehouseAPI.GET("/:id", handler.GetWarehouse)
	warehouseAPI.POST("", handler.CreateWarehouse)
	warehouseAPI.PUT("/:id", handler.UpdateWarehouse)
	warehouseAPI.DELETE("/:id", handler.DeleteWarehouse)
	warehouseAPI.PUT("/:id/stock", handler.EditStock)
	warehouseAPI.GET("/:id/availability", handler.GetProjection)

	// Vehicle API routes
	vehicleAPI := e.Group("/api/vehicles", mid.AuthMiddleware)
	vehicleAPI.GET("", handler.ListVehicles)
	vehicleAPI.GET("/:id", handler.GetVehicle)
	vehicleAPI.POST("", handler.CreateVehicle)
	vehicleAPI.PUT("/:id", handler.UpdateVehicle)
	vehicleAPI.DELETE("/:id", handler.DeleteVehicle)
	vehicleAPI.GET("/:id/availability", handler.GetVehicleAvailability)

	// Shop API routes
	shopAPI := e.Group("/api/shops", mid.AuthMiddleware)
	shopAPI.GET("", handler.ListShops)
	shopAPI.GET("/:id", handler.GetShop)
	shopAPI.POST("", handler.CreateShop)
	shopAPI.PUT("/:id", handler.UpdateShop)
	shopAPI.DELETE("/:id", handler.DeleteShop)

	// Product API routes
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", handler.ListProducts)
	productAPI.GET("/:id", handler.GetProduct)
	productAPI.POST("", handler.CreateProduct)
	productAPI.PUT("/:id", handler.UpdateProduct)
	productAPI.DELETE("/:id", handler.DeleteProduct)

	// Transit API routes
	transitAPI := e.Group("/api/transits", mid.AuthMiddleware)
	transitAPI.GET("", handler.ListTransits)
	transitAPI.GET("/:id", handler.GetTransit)
	transitAPI.POST("", handler.CreateTransit)
	transitAPI.POST("/:id/accept", handler.AcceptTransit)
	transitAPI.POST("/accept", handler.AcceptTransitBatch)

	// Order API routes
	orderAPI := e.Group("/api/orders", mid.AuthMiddleware)
	orderAPI.GET("", handler.ListOrders)
	orderAPI.GET("/:id", handler.GetOrder)
	orderAPI.POST("", handler.CreateOrder)
	orderAPI.POST("/:id/accept", handler.AcceptOrder)
	orderAPI.POST("/accept", handler.AcceptOrderBatch)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
