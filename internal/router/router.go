// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/handlers"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/middleware"
	"github.com/sensorgrid/ipflow-backend/internal/pinning"
	"github.com/sensorgrid/ipflow-backend/internal/services"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize clients
	pinClient := pinning.NewClient(cfg.Pinning.Endpoint, cfg.Pinning.GatewayURL, cfg.Pinning.AuthToken)
	ledgerClient := ledger.NewGatewayClient(cfg.Ledger.GatewayURL)

	// Initialize services
	archiveService, err := services.NewArchiveService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Archive storage unavailable; continuing without it")
		archiveService = nil
	}

	authService := services.NewAuthService(db, cfg)
	recordService := services.NewSensorRecordService(db, archiveService)
	registrationService := services.NewRegistrationService(db, pinClient, ledgerClient, cfg)
	licenseService := services.NewLicenseService(db, ledgerClient, cfg)
	royaltyService := services.NewRoyaltyService(db, ledgerClient, cfg)
	provenanceService := services.NewProvenanceService(ledgerClient, cfg.Pinning.GatewayURL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	recordHandler := handlers.NewSensorRecordHandler(recordService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService, recordService, cfg)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	royaltyHandler := handlers.NewRoyaltyHandler(royaltyService)
	provenanceHandler := handlers.NewProvenanceHandler(provenanceService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/link-wallet", middleware.AuthRequired(), authHandler.LinkWallet)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Sensor record index
		records := v1.Group("/sensor-records")
		records.Use(middleware.AuthRequired())
		{
			records.POST("", recordHandler.Create)
			records.GET("", recordHandler.List)
			records.GET("/:id", recordHandler.Get)
			records.GET("/:id/archive-url", recordHandler.ArchiveURL)
			records.DELETE("/:id", recordHandler.Delete)
		}

		// Registration routes; these sign and submit on-chain transactions
		registrations := v1.Group("/registrations")
		registrations.Use(middleware.AuthRequired())
		{
			registrations.GET("/by-sensor-data/:id", registrationHandler.GetBySensorData)

			submitting := registrations.Group("")
			submitting.Use(middleware.WalletRequired(), middleware.LedgerRateLimit())
			{
				submitting.POST("/original", registrationHandler.RegisterOriginal)
				submitting.POST("/derivative", registrationHandler.RegisterDerivative)
			}
		}

		// License routes
		licenses := v1.Group("/licenses")
		{
			licenses.GET("/by-asset/:ipId", middleware.OptionalAuth(), licenseHandler.ByAsset)

			protected := licenses.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/my-licenses", licenseHandler.MyLicenses)
				protected.POST("/mint", middleware.WalletRequired(), middleware.LedgerRateLimit(), licenseHandler.Mint)
			}
		}

		// Royalty routes
		royalties := v1.Group("/royalties")
		{
			royalties.GET("/:ipId/claimable", middleware.OptionalAuth(), royaltyHandler.Claimable)
			royalties.GET("/:ipId/flows", middleware.OptionalAuth(), royaltyHandler.Flows)

			protected := royalties.Group("")
			protected.Use(middleware.AuthRequired(), middleware.WalletRequired(), middleware.LedgerRateLimit())
			{
				protected.POST("/pay", royaltyHandler.Pay)
				protected.POST("/:ipId/claim-all", royaltyHandler.ClaimAll)
			}
		}

		// Provenance reads; public, but a presented token still attributes
		// the audit log entry to the caller
		provenance := v1.Group("/provenance")
		provenance.Use(middleware.OptionalAuth())
		{
			provenance.GET("/:ipId", provenanceHandler.GetCore)
			provenance.GET("/:ipId/enriched", provenanceHandler.GetEnriched)
			provenance.POST("/batch", provenanceHandler.BatchRead)
		}
	}

	return r
}
