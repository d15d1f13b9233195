package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pricing-engine/internal/shared/middleware"
	"pricing-engine/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAdminRuleRoutes(v1, c)
		setupAdminPromoRoutes(v1, c)
		setupPricingRoutes(v1, c)
		setupCheckoutRoutes(v1, c)
	}

	return router
}

// ========================================
// ADMIN RULE ROUTES
// ========================================
func setupAdminRuleRoutes(v1 *gin.RouterGroup, c *container.Container) {
	rules := v1.Group("/admin/rules")
	{
		rules.POST("", c.RuleHandler.UpsertRule)
		rules.GET("", c.RuleHandler.ListRules)
		rules.GET("/:id", c.RuleHandler.GetRule)
		rules.PATCH("/:id/active", c.RuleHandler.ToggleRuleActive)
		rules.DELETE("/:id", c.RuleHandler.DeleteRule)
		rules.POST("/:id/apply", c.CatalogHandler.ApplyToCatalog)
		rules.POST("/:id/remove", c.CatalogHandler.RemoveFromCatalog)
	}
}

// ========================================
// ADMIN PROMO ROUTES
// ========================================
func setupAdminPromoRoutes(v1 *gin.RouterGroup, c *container.Container) {
	promos := v1.Group("/admin/promos")
	{
		promos.POST("", c.PromoHandler.UpsertPromo)
		promos.GET("", c.PromoHandler.ListPromos)
		promos.GET("/:id", c.PromoHandler.GetPromo)
		promos.PATCH("/:id/active", c.PromoHandler.TogglePromoActive)
		promos.DELETE("/:id", c.PromoHandler.DeletePromo)
		promos.GET("/:id/stats", c.PromoHandler.GetPromoStats)
	}
}

// ========================================
// PRICING ROUTES
// ========================================
func setupPricingRoutes(v1 *gin.RouterGroup, c *container.Container) {
	pricing := v1.Group("/pricing")
	{
		pricing.POST("/preview", c.PricingHandler.PreviewPricing)
		pricing.POST("/apply-promo", c.PricingHandler.ApplyPromo)
	}
}

// ========================================
// CHECKOUT ROUTES
// ========================================
func setupCheckoutRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/checkout", c.CheckoutHandler.Checkout)
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Redis is optional: the rule cache falls back to Postgres.
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
