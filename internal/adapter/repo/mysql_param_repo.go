package repo

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

// MySQLParamRepo reads runtime tunables from the system_parameters table.
// Any failure falls back to the caller's default; a misconfigured parameter
// must never take checkout down.
type MySQLParamRepo struct{ db *sql.DB }

func NewMySQLParamRepo(db *sql.DB) *MySQLParamRepo { return &MySQLParamRepo{db: db} }

func (r *MySQLParamRepo) get(ctx context.Context, key string) (string, bool) {
	var value string
	err := r.db.QueryRowContext(ctx, `
SELECT value FROM system_parameters WHERE name=?`, key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			logging.FromCtx(ctx).Warn("parameter lookup failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (r *MySQLParamRepo) GetString(ctx context.Context, key, def string) string {
	if v, ok := r.get(ctx, key); ok {
		return v
	}
	return def
}

func (r *MySQLParamRepo) GetInt(ctx context.Context, key string, def int) int {
	v, ok := r.get(ctx, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logging.FromCtx(ctx).Warn("parameter not an int", "key", key, "value", v)
		return def
	}
	return n
}

func (r *MySQLParamRepo) GetBool(ctx context.Context, key string, def bool) bool {
	v, ok := r.get(ctx, key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		logging.FromCtx(ctx).Warn("parameter not a bool", "key", key, "value", v)
		return def
	}
	return b
}

var _ usecase.SystemParams = (*MySQLParamRepo)(nil)
