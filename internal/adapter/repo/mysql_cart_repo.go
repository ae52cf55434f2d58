package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/entity"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// MySQLCartRepo stores one cart row per user, lines as a JSON column. The
// unique key on user_id makes Save an upsert.
type MySQLCartRepo struct{ db *sql.DB }

func NewMySQLCartRepo(db *sql.DB) *MySQLCartRepo { return &MySQLCartRepo{db: db} }

func (r *MySQLCartRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,lines_json,currency,created_at,updated_at
FROM carts WHERE user_id=?`, userID)

	var (
		c         domain.Cart
		linesJSON []byte
	)
	err := row.Scan(&c.ID, &c.UserID, &linesJSON, &c.Currency, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: cart for user %s", usecase.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linesJSON, &c.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal lines: %w", err)
	}
	return &c, nil
}

func (r *MySQLCartRepo) Save(ctx context.Context, c *domain.Cart) error {
	linesJSON, err := json.Marshal(c.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO carts (id,user_id,lines_json,currency,created_at,updated_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE lines_json=VALUES(lines_json), updated_at=VALUES(updated_at)`,
		c.ID, c.UserID, linesJSON, c.Currency, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

var _ usecase.CartRepo = (*MySQLCartRepo)(nil)
