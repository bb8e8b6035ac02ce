package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/pkg/errcodes"
)

type SettingRepository struct {
	pool *ConnPool
	now  func() time.Time
}

func NewSettingRepository(pool *ConnPool) *SettingRepository {
	return &SettingRepository{
		pool: pool,
		now:  time.Now,
	}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (entity.SystemSetting, error) {
	query := fmt.Sprintf(
		`SELECT key, value, updated_at, updated_by FROM %s WHERE key = ?`,
		r.pool.table("system_settings"),
	)

	var row settingSchema

	err := r.pool.Do(ctx, func(ctx context.Context, db *sqlx.DB) error {
		return db.GetContext(ctx, &row, db.Rebind(query), key)
	})

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return entity.SystemSetting{}, domain.NewError(errcodes.SettingNotFound, "setting not found: "+key)
	case domain.HasCode(err, errcodes.StoreUnavailable):
		return entity.SystemSetting{}, err
	case err != nil:
		return entity.SystemSetting{}, domain.WrapError(err, errcodes.StoreUnavailable, "failed to get setting")
	}

	return row.toDomain(), nil
}

func (r *SettingRepository) Set(ctx context.Context, key, value, actor string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at, updated_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by`,
		r.pool.table("system_settings"),
	)

	return r.pool.Do(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if _, err := db.ExecContext(ctx, db.Rebind(query), key, value, storeTime(r.now()), actor); err != nil {
			return domain.WrapError(err, errcodes.StoreUnavailable, "failed to upsert setting")
		}

		return nil
	})
}

// IsAutoUpdateEnabled отсутствие записи означает включено.
func (r *SettingRepository) IsAutoUpdateEnabled(ctx context.Context) (bool, error) {
	setting, err := r.Get(ctx, entity.SettingAutoUpdateEnabled)
	if domain.HasCode(err, errcodes.SettingNotFound) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	enabled, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "auto update setting is not a boolean")
	}

	return enabled, nil
}

func (r *SettingRepository) SetAutoUpdateEnabled(ctx context.Context, enabled bool, actor string) error {
	return r.Set(ctx, entity.SettingAutoUpdateEnabled, strconv.FormatBool(enabled), actor)
}
