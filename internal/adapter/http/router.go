package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/http/middleware"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

func NewRouter(cart *CartHandler, checkout *CheckoutHandler, l *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Debug("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1", middleware.Identity())
	{
		v1.GET("/cart", cart.GetCart)
		v1.POST("/cart/items", cart.AddLine)
		v1.PUT("/cart/items/:sku", cart.UpdateLineQuantity)
		v1.DELETE("/cart/items/:sku", cart.RemoveLine)
		v1.DELETE("/cart", cart.Clear)

		v1.POST("/checkouts", checkout.Prepare)
		v1.GET("/checkouts", checkout.List)
		v1.GET("/checkouts/active", checkout.GetActive)
		v1.GET("/checkouts/:id", checkout.Get)
		v1.POST("/checkouts/:id/finalize", checkout.Finalize)
		v1.POST("/checkouts/:id/pay", checkout.Pay)
		v1.POST("/checkouts/:id/cancel", checkout.Cancel)
	}

	return r
}
