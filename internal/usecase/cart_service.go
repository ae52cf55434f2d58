package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
)

const defaultCurrency = "IDR"

// CartService owns the per-user cart. It never talks to the inventory ledger;
// stock is only touched once a checkout is prepared.
type CartService struct {
	repo     CartRepo
	params   SystemParams
	defaults ParamDefaults
	now      func() time.Time
}

func NewCartService(repo CartRepo, params SystemParams, defaults ParamDefaults) *CartService {
	return &CartService{
		repo:     repo,
		params:   params,
		defaults: defaults,
		now:      time.Now,
	}
}

// GetCart returns the user's cart, creating an empty one on first touch.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}
	cart, err := s.repo.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		now := s.now()
		cart = &domain.Cart{
			ID:        uuid.NewString(),
			UserID:    userID,
			Currency:  defaultCurrency,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Save(ctx, cart); err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
		return cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddLine merges the line into the cart (quantities summed, price snapshot
// last-write-wins) after checking the max-items and max-quantity parameters.
func (s *CartService) AddLine(ctx context.Context, userID string, line domain.CartLine) (*domain.Cart, error) {
	if line.Sku == "" || line.SubSku == "" {
		return nil, fmt.Errorf("%w: sku and subSku required", ErrValidation)
	}
	if line.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxItems := s.params.GetInt(ctx, ParamMaxItems, s.defaults.MaxItems)
	maxQty := s.params.GetInt(ctx, ParamMaxQuantityPerItem, s.defaults.MaxQuantityPerItem)

	if cart.LineQuantity(line.Sku) == 0 && len(cart.Lines) >= maxItems {
		return nil, fmt.Errorf("%w: cart holds at most %d items", ErrValidation, maxItems)
	}
	if cart.LineQuantity(line.Sku)+line.Quantity > int64(maxQty) {
		return nil, fmt.Errorf("%w: at most %d units per item", ErrValidation, maxQty)
	}

	cart.AddOrUpdateLine(line)
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// UpdateLineQuantity sets a line's quantity; <= 0 removes the line (treated
// as a remove, not an error). Returns ErrNotFound when the SKU is absent.
func (s *CartService) UpdateLineQuantity(ctx context.Context, userID, sku string, quantity int64) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quantity > 0 {
		maxQty := s.params.GetInt(ctx, ParamMaxQuantityPerItem, s.defaults.MaxQuantityPerItem)
		if quantity > int64(maxQty) {
			return nil, fmt.Errorf("%w: at most %d units per item", ErrValidation, maxQty)
		}
	}
	if !cart.UpdateLineQuantity(sku, quantity) {
		return nil, fmt.Errorf("%w: sku %s not in cart", ErrNotFound, sku)
	}
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// RemoveLine removes a line by SKU. Returns ErrNotFound when absent.
func (s *CartService) RemoveLine(ctx context.Context, userID, sku string) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.RemoveLine(sku) {
		return nil, fmt.Errorf("%w: sku %s not in cart", ErrNotFound, sku)
	}
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// Clear empties the cart. Idempotent on an already-empty cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	if len(cart.Lines) == 0 {
		return nil
	}
	cart.Clear()
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
