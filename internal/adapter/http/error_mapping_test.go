package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/http/middleware"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(c, err)
	return w.Code
}

func TestWriteErrorMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(t, usecase.ErrNotFound))
	// ownership violations read as not-found, never as forbidden
	assert.Equal(t, http.StatusNotFound, statusFor(t, usecase.ErrNotOwner))
	assert.Equal(t, http.StatusBadRequest, statusFor(t, usecase.ErrEmptyCart))
	assert.Equal(t, http.StatusBadRequest, statusFor(t, fmt.Errorf("%w: quantity", usecase.ErrValidation)))
	assert.Equal(t, http.StatusConflict, statusFor(t, usecase.ErrAlreadyPaid))
	assert.Equal(t, http.StatusConflict, statusFor(t, usecase.ErrCheckoutExpired))
	assert.Equal(t, http.StatusConflict, statusFor(t, usecase.ErrNothingReserved))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(t, usecase.ErrInventoryUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(t, fmt.Errorf("boom")))
}

func TestIdentityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", middleware.Identity(), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.UserID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-User-Id", "user-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}
