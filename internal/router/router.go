// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/promptsig/vault-backend/internal/config"
	"github.com/promptsig/vault-backend/internal/handlers"
	"github.com/promptsig/vault-backend/internal/middleware"
	"github.com/promptsig/vault-backend/internal/services"
	"github.com/promptsig/vault-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	tokenService := services.NewTokenService(db)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	vaultService := services.NewVaultService(db, &cfg.Vault)
	promptService := services.NewPromptService(db, tokenService)
	executionService := services.NewExecutionService(db, tokenService)
	stakeService := services.NewStakeService(db, tokenService, &cfg.Vault)
	paymentService := services.NewPaymentService(db, tokenService, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	vaultHandler := handlers.NewVaultHandler(vaultService)
	promptHandler := handlers.NewPromptHandler(promptService, storageService)
	executionHandler := handlers.NewExecutionHandler(executionService)
	stakeHandler := handlers.NewStakeHandler(stakeService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimit := middleware.NewRateLimiter(rate.Limit(20), 40)
	authLimit := middleware.NewRateLimiter(rate.Limit(1), 5)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(nil))
	r.Use(generalLimit.Middleware())

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
		auth.Use(authLimit.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Vault administration
		vault := v1.Group("/vault")
		{
			vault.GET("/state", vaultHandler.GetState)

			protected := vault.Group("")
			protected.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				protected.POST("/pause", vaultHandler.Pause)
				protected.POST("/resume", vaultHandler.Resume)
				protected.PUT("/fees", vaultHandler.UpdateFees)
			}
		}

		// Prompt registry
		prompts := v1.Group("/prompts")
		{
			prompts.GET("", middleware.OptionalAuth(), promptHandler.List)
			prompts.GET("/:prompt_id", middleware.OptionalAuth(), promptHandler.Get)
			prompts.GET("/:prompt_id/versions", promptHandler.ListVersions)
			prompts.GET("/:prompt_id/executions", executionHandler.ListForPrompt)
			prompts.GET("/:prompt_id/staked", stakeHandler.TotalForPrompt)

			protected := prompts.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", promptHandler.Register)
				protected.GET("/:prompt_id/access", promptHandler.CheckAccess)
				protected.PATCH("/:prompt_id", promptHandler.Update)
				protected.POST("/:prompt_id/versions", promptHandler.CreateVersion)
				protected.POST("/:prompt_id/content", promptHandler.UploadContent)
				protected.PUT("/:prompt_id/license", promptHandler.UpdateLicense)
				protected.PUT("/:prompt_id/status", promptHandler.UpdateStatus)
				protected.POST("/:prompt_id/tags", promptHandler.AddTag)
				protected.DELETE("/:prompt_id/tags/:name", promptHandler.RemoveTag)
				protected.POST("/:prompt_id/transfer", promptHandler.TransferOwnership)
				protected.POST("/:prompt_id/fork", promptHandler.Fork)
			}
		}

		// Execution metering
		executions := v1.Group("/executions")
		executions.Use(middleware.AuthRequired())
		{
			executions.POST("", executionHandler.Record)
			executions.GET("", executionHandler.ListMine)
		}

		// Staking
		stakes := v1.Group("/stakes")
		stakes.Use(middleware.AuthRequired())
		{
			stakes.POST("", stakeHandler.Stake)
			stakes.POST("/unstake", stakeHandler.Unstake)
			stakes.POST("/claim", stakeHandler.ClaimRewards)
			stakes.GET("", stakeHandler.ListMine)
			stakes.GET("/:prompt_id", stakeHandler.Get)
		}

		// Credit top-ups
		credits := v1.Group("/credits")
		credits.Use(middleware.AuthRequired())
		{
			credits.POST("/topup", paymentHandler.CreateTopUp)
			credits.POST("/topup/:purchase_id/confirm", paymentHandler.ConfirmTopUp)
			credits.GET("/balance", paymentHandler.GetBalance)
			credits.GET("/history", paymentHandler.GetHistory)
		}
	}

	return r
}
