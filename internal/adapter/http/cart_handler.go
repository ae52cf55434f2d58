package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/http/middleware"
	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

type CartHandler struct {
	carts *usecase.CartService
}

func NewCartHandler(carts *usecase.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type addLineReq struct {
	Sku           string `json:"sku" binding:"required"`
	SubSku        string `json:"subSku" binding:"required"`
	Title         string `json:"title"`
	ImageURL      string `json:"imageUrl"`
	Quantity      int64  `json:"quantity" binding:"required,gt=0"`
	PriceSnapshot int64  `json:"priceSnapshot" binding:"gte=0"`
}

type updateQuantityReq struct {
	Quantity int64 `json:"quantity"`
}

// cartBody is the cart as clients see it, with the derived totals attached.
type cartBody struct {
	*domain.Cart
	TotalAmount int64 `json:"totalAmount"`
	TotalItems  int64 `json:"totalItems"`
}

func newCartBody(cart *domain.Cart) cartBody {
	return cartBody{Cart: cart, TotalAmount: cart.TotalAmount(), TotalItems: cart.TotalItems()}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(newCartBody(cart)))
}

func (h *CartHandler) AddLine(c *gin.Context) {
	var req addLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("invalid request body"))
		return
	}

	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.AddLine(ctx, middleware.UserID(c), domain.CartLine{
		Sku:           req.Sku,
		SubSku:        req.SubSku,
		Title:         req.Title,
		ImageURL:      req.ImageURL,
		Quantity:      req.Quantity,
		PriceSnapshot: req.PriceSnapshot,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(newCartBody(cart)))
}

func (h *CartHandler) UpdateLineQuantity(c *gin.Context) {
	var req updateQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("invalid request body"))
		return
	}

	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.UpdateLineQuantity(ctx, middleware.UserID(c), c.Param("sku"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(newCartBody(cart)))
}

func (h *CartHandler) RemoveLine(c *gin.Context) {
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.RemoveLine(ctx, middleware.UserID(c), c.Param("sku"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(newCartBody(cart)))
}

func (h *CartHandler) Clear(c *gin.Context) {
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	if err := h.carts.Clear(ctx, middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func reqCtx(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}
