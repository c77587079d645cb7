package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/config"
	"github.com/ikkim/shopadmin-backend/internal/app/controller"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Router struct {
	taxonomyController *controller.TaxonomyController
	productController  *controller.ProductController
	orderController    *controller.OrderController
	refundController   *controller.RefundController
	reportController   *controller.ReportController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
	healthChecks       map[string]HealthCheck
}

func NewRouter(
	taxonomyController *controller.TaxonomyController,
	productController *controller.ProductController,
	orderController *controller.OrderController,
	refundController *controller.RefundController,
	reportController *controller.ReportController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
	healthChecks map[string]HealthCheck,
) *Router {
	return &Router{
		taxonomyController: taxonomyController,
		productController:  productController,
		orderController:    orderController,
		refundController:   refundController,
		reportController:   reportController,
		authMiddleware:     authMiddleware,
		config:             cfg,
		healthChecks:       healthChecks,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)

	v1 := router.Group("/api/v1")
	{
		taxonomy := v1.Group("/taxonomy")
		{
			taxonomy.GET("", r.taxonomyController.ListNodes)
			taxonomy.GET("/options", r.taxonomyController.GetOptions)
			taxonomy.GET("/:id", r.taxonomyController.GetNode)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		admin := v1.Group("/admin")
		admin.Use(
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleStaff),
		)
		{
			admin.POST("/taxonomy", r.taxonomyController.CreateNode)
			admin.PUT("/taxonomy/:id", r.taxonomyController.UpdateNode)
			admin.GET("/taxonomy/audit", r.taxonomyController.Audit)

			admin.POST("/products", r.productController.CreateProduct)

			admin.GET("/orders", r.orderController.GetOrders)
			admin.GET("/orders/:id", r.orderController.GetOrderByID)
			admin.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)
			admin.GET("/orders/:id/refunds", r.refundController.ListOrderRefunds)
			admin.POST("/orders/:id/refunds", r.refundController.CreateRefund)
			admin.GET("/refunds/:id", r.refundController.GetRefund)
			admin.PUT("/refunds/:id", r.refundController.UpdateRefund)
			admin.PUT("/refunds/:id/status", r.refundController.UpdateRefundStatus)
			admin.DELETE("/refunds/:id",
				r.authMiddleware.RequireRole(model.RoleAdmin),
				r.refundController.DeleteRefund,
			)

			admin.GET("/reports/refunds", r.reportController.DownloadRefundReport)
			admin.POST("/reports/refunds/export", r.reportController.ExportRefundReport)
		}
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(r.healthChecks))
	for name, check := range r.healthChecks {
		if err := check(ctx); err != nil {
			middleware.GetLoggerFromContext(c).Warn("Health check failed", map[string]interface{}{
				"dependency": name,
				"error":      err.Error(),
			})
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"message": "Shop admin API is running",
		"checks":  checks,
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
