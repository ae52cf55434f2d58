package repo

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

type MySQLCheckoutRepo struct{ db *sql.DB }

func NewMySQLCheckoutRepo(db *sql.DB) *MySQLCheckoutRepo { return &MySQLCheckoutRepo{db: db} }

const checkoutColumns = `id,user_id,order_id,payment_code,source_cart_id,lines_json,total_price,currency,
status,address_json,locked_at,expires_at,created_at,paid_at,cancelled_at,cancel_reason,stock_released`

func (r *MySQLCheckoutRepo) Create(ctx context.Context, c *domain.Checkout) error {
	linesJSON, err := json.Marshal(c.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO checkouts (`+checkoutColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,NULL,?,?,?,NULL,NULL,'',0)`,
		c.ID, c.UserID, c.OrderID, c.PaymentCode, c.SourceCartID, linesJSON,
		c.TotalPrice, c.Currency, string(c.Status),
		c.LockedAt, c.ExpiresAt, c.CreatedAt,
	)
	return err
}

func (r *MySQLCheckoutRepo) GetByID(ctx context.Context, id string) (*domain.Checkout, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+checkoutColumns+` FROM checkouts WHERE id=?`, id)
	c, err := scanCheckout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: checkout %s", usecase.ErrNotFound, id)
	}
	return c, err
}

func (r *MySQLCheckoutRepo) FindWaitingByUser(ctx context.Context, userID string) (*domain.Checkout, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+checkoutColumns+` FROM checkouts
WHERE user_id=? AND status='WAITING'
ORDER BY created_at DESC LIMIT 1`, userID)
	c, err := scanCheckout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no waiting checkout for user %s", usecase.ErrNotFound, userID)
	}
	return c, err
}

func (r *MySQLCheckoutRepo) Finalize(ctx context.Context, id string, addr *domain.AddressSnapshot, orderID, paymentCode string, totalPrice int64) error {
	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE checkouts
SET address_json=?, order_id=?, payment_code=?, total_price=?
WHERE id=? AND status='WAITING' AND order_id=''`,
		addrJSON, orderID, paymentCode, totalPrice, id,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: checkout %s not finalizable", usecase.ErrInvalidState, id)
	}
	return nil
}

// ClaimPaid is the single write that decides a pay/cancel/expire race: only
// one caller ever moves the row out of WAITING.
func (r *MySQLCheckoutRepo) ClaimPaid(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE checkouts
SET status='PAID', paid_at=?
WHERE id=? AND status='WAITING' AND expires_at > ?`,
		now, id, now,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLCheckoutRepo) ClaimCancelled(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE checkouts
SET status='CANCELLED', cancelled_at=?, cancel_reason=?
WHERE id=? AND status='WAITING' AND expires_at > ?`,
		now, reason, id, now,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLCheckoutRepo) ClaimExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE checkouts
SET status='EXPIRED', cancelled_at=?, cancel_reason='checkout expired'
WHERE id=? AND status='WAITING' AND expires_at <= ?`,
		now, id, now,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLCheckoutRepo) MarkStockReleased(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE checkouts SET stock_released=1 WHERE id=?`, id)
	return err
}

func (r *MySQLCheckoutRepo) FindPendingExpiry(ctx context.Context, now time.Time, limit int) ([]*domain.Checkout, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+checkoutColumns+` FROM checkouts
WHERE (status='WAITING' AND expires_at <= ?)
   OR (status IN ('EXPIRED','CANCELLED') AND stock_released=0)
ORDER BY expires_at ASC LIMIT ?`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheckouts(rows)
}

func (r *MySQLCheckoutRepo) Filter(ctx context.Context, f usecase.CheckoutFilter) ([]*domain.Checkout, string, error) {
	q := `SELECT ` + checkoutColumns + ` FROM checkouts WHERE user_id=?`
	args := []any{f.UserID}
	if f.Status != "" {
		q += ` AND status=?`
		args = append(args, string(f.Status))
	}
	if f.OrderID != "" {
		q += ` AND order_id=?`
		args = append(args, f.OrderID)
	}
	if f.Cursor != "" {
		before, err := decodeCursor(f.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("%w: bad cursor", usecase.ErrValidation)
		}
		q += ` AND created_at < ?`
		args = append(args, before)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, f.Size+1)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	list, err := collectCheckouts(rows)
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(list) > f.Size {
		list = list[:f.Size]
		next = encodeCursor(list[len(list)-1].CreatedAt)
	}
	return list, next, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCheckout(row rowScanner) (*domain.Checkout, error) {
	var (
		c             domain.Checkout
		status        string
		linesJSON     []byte
		addrJSON      []byte
		paidAt        sql.NullTime
		cancelledAt   sql.NullTime
		stockReleased bool
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.OrderID, &c.PaymentCode, &c.SourceCartID, &linesJSON,
		&c.TotalPrice, &c.Currency, &status, &addrJSON,
		&c.LockedAt, &c.ExpiresAt, &c.CreatedAt,
		&paidAt, &cancelledAt, &c.CancelReason, &stockReleased,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linesJSON, &c.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal lines: %w", err)
	}
	if len(addrJSON) > 0 {
		var addr domain.AddressSnapshot
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			return nil, fmt.Errorf("unmarshal address: %w", err)
		}
		c.ShippingAddress = &addr
	}
	c.Status = domain.Status(status)
	if paidAt.Valid {
		t := paidAt.Time
		c.PaidAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		c.CancelledAt = &t
	}
	c.StockReleased = stockReleased
	return &c, nil
}

func collectCheckouts(rows *sql.Rows) ([]*domain.Checkout, error) {
	var out []*domain.Checkout
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func encodeCursor(t time.Time) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(t.UnixNano(), 10)))
}

func decodeCursor(s string) (time.Time, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return time.Time{}, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n), nil
}

var _ usecase.CheckoutRepo = (*MySQLCheckoutRepo)(nil)
