package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/http/middleware"
	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

type CheckoutHandler struct {
	checkouts *usecase.CheckoutService
}

func NewCheckoutHandler(checkouts *usecase.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts}
}

// Prepare converts the cart into a checkout. Always 200 on a completed
// attempt: partial and zero reservation are outcomes the client renders per
// line, not transport errors.
func (h *CheckoutHandler) Prepare(c *gin.Context) {
	ctx, cancel := reqCtx(c, 10*time.Second)
	defer cancel()

	res, err := h.checkouts.PrepareCheckout(ctx, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type finalizeReq struct {
	AddressID  string       `json:"addressId"`
	NewAddress *finalizeAdr `json:"newAddress"`
}

type finalizeAdr struct {
	Label      string `json:"label"`
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
}

func (h *CheckoutHandler) Finalize(c *gin.Context) {
	var req finalizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("invalid request body"))
		return
	}

	in := usecase.FinalizeInput{AddressID: req.AddressID}
	if req.NewAddress != nil {
		in.NewAddress = &domain.AddressSnapshot{
			Label:      req.NewAddress.Label,
			Recipient:  req.NewAddress.Recipient,
			Phone:      req.NewAddress.Phone,
			Street:     req.NewAddress.Street,
			City:       req.NewAddress.City,
			Province:   req.NewAddress.Province,
			PostalCode: req.NewAddress.PostalCode,
		}
	}

	ctx, cancel := reqCtx(c, 5*time.Second)
	defer cancel()

	chk, err := h.checkouts.FinalizeCheckout(ctx, c.Param("id"), middleware.UserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(chk))
}

func (h *CheckoutHandler) Pay(c *gin.Context) {
	ctx, cancel := reqCtx(c, 10*time.Second)
	defer cancel()

	chk, err := h.checkouts.PayCheckout(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(chk))
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *CheckoutHandler) Cancel(c *gin.Context) {
	var req cancelReq
	// body is optional
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := reqCtx(c, 10*time.Second)
	defer cancel()

	chk, err := h.checkouts.CancelCheckout(ctx, c.Param("id"), middleware.UserID(c), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(chk))
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	chk, err := h.checkouts.GetCheckout(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(chk))
}

func (h *CheckoutHandler) GetActive(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	chk, err := h.checkouts.GetActiveCheckout(ctx, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody(chk))
}

func (h *CheckoutHandler) List(c *gin.Context) {
	var size int
	if s := c.Query("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, errBody("size must be a positive integer"))
			return
		}
		size = n
	}

	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	list, cursor, err := h.checkouts.ListCheckouts(ctx, usecase.CheckoutFilter{
		UserID:  middleware.UserID(c),
		Status:  domain.Status(c.Query("status")),
		OrderID: c.Query("orderId"),
		Size:    size,
		Cursor:  c.Query("cursor"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       list,
		"nextCursor": cursor,
	})
}

func okBody(data any) gin.H {
	return gin.H{"success": true, "data": data}
}

func errBody(msg string) gin.H {
	return gin.H{"success": false, "message": msg}
}

// writeError maps use case errors to HTTP statuses. Ownership violations
// read as not-found so checkout ids are not probeable.
func writeError(c *gin.Context, err error) {
	c.Error(err)
	switch {
	case errors.Is(err, usecase.ErrNotOwner), errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, errBody("not found"))
	case errors.Is(err, usecase.ErrValidation):
		c.JSON(http.StatusBadRequest, errBody(err.Error()))
	case errors.Is(err, usecase.ErrInvalidState), errors.Is(err, usecase.ErrNothingReserved):
		c.JSON(http.StatusConflict, errBody(err.Error()))
	case errors.Is(err, usecase.ErrInventoryUnavailable):
		c.JSON(http.StatusServiceUnavailable, errBody("inventory temporarily unavailable, retry later"))
	default:
		c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}
}
