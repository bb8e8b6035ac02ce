package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/pkg/errcodes"
)

const offerColumns = `id, side, position, price, min_amount, max_amount, available_quantity,
	maker_name, maker_id, payment_methods, is_online, last_logout_time, is_triangle,
	merchant_tier, completion_rate, total_orders, updated_at`

type OfferRepository struct {
	pool *ConnPool
}

func NewOfferRepository(pool *ConnPool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// UpsertOffers в одной транзакции записывает объявления стороны, удаляет строки,
// которых нет в новом цикле, и обновляет update_metadata. Возвращает число строк.
func (r *OfferRepository) UpsertOffers(
	ctx context.Context,
	side entity.Side,
	offers []entity.Offer,
	at time.Time,
) (int, error) {
	at = storeTime(at)

	rows := make([]offerSchema, 0, len(offers))
	seen := make(map[string]struct{}, len(offers))

	// Первое вхождение id выигрывает, чтобы сохранить ранг площадки.
	for _, offer := range offers {
		if _, ok := seen[offer.ID]; ok {
			continue
		}

		seen[offer.ID] = struct{}{}
		offer.Side = side

		row, err := fromOffer(offer, len(rows), at)
		if err != nil {
			return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to map offer "+offer.ID)
		}

		rows = append(rows, row)
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (
			:id, :side, :position, :price, :min_amount, :max_amount, :available_quantity,
			:maker_name, :maker_id, :payment_methods, :is_online, :last_logout_time, :is_triangle,
			:merchant_tier, :completion_rate, :total_orders, :updated_at
		)
		ON CONFLICT (id, side) DO UPDATE SET
			position = excluded.position,
			price = excluded.price,
			min_amount = excluded.min_amount,
			max_amount = excluded.max_amount,
			available_quantity = excluded.available_quantity,
			maker_name = excluded.maker_name,
			maker_id = excluded.maker_id,
			payment_methods = excluded.payment_methods,
			is_online = excluded.is_online,
			last_logout_time = excluded.last_logout_time,
			is_triangle = excluded.is_triangle,
			merchant_tier = excluded.merchant_tier,
			completion_rate = excluded.completion_rate,
			total_orders = excluded.total_orders,
			updated_at = excluded.updated_at`,
		r.pool.table("p2p_offers"), offerColumns,
	)

	prune := fmt.Sprintf(`DELETE FROM %s WHERE side = ? AND updated_at <> ?`, r.pool.table("p2p_offers"))

	metadata := fmt.Sprintf(`
		INSERT INTO %s (side, last_update, offers_count)
		VALUES (?, ?, ?)
		ON CONFLICT (side) DO UPDATE SET
			last_update = excluded.last_update,
			offers_count = excluded.offers_count`,
		r.pool.table("update_metadata"),
	)

	err := r.pool.Do(ctx, func(ctx context.Context, db *sqlx.DB) error {
		return withTx(ctx, db, func(tx *sqlx.Tx) error {
			stmt, err := tx.PrepareNamedContext(ctx, upsert)
			if err != nil {
				return domain.WrapError(err, errcodes.StoreUnavailable, "failed to prepare upsert")
			}
			defer stmt.Close()

			for _, row := range rows {
				if _, err = stmt.ExecContext(ctx, row); err != nil {
					return domain.WrapError(err, errcodes.StoreUnavailable, "failed to upsert offer "+row.ID)
				}
			}

			if _, err = tx.ExecContext(ctx, tx.Rebind(prune), side.String(), at); err != nil {
				return domain.WrapError(err, errcodes.StoreUnavailable, "failed to prune offers")
			}

			if _, err = tx.ExecContext(ctx, tx.Rebind(metadata), side.String(), at, len(rows)); err != nil {
				return domain.WrapError(err, errcodes.StoreUnavailable, "failed to upsert metadata")
			}

			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	return len(rows), nil
}

// GetOffers продажа по возрастанию цены, покупка по убыванию; при равной цене ранг площадки.
func (r *OfferRepository) GetOffers(ctx context.Context, side entity.Side) ([]entity.Offer, error) {
	direction := "DESC"
	if side.Ascending() {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE side = ? ORDER BY price %s, position ASC`,
		offerColumns, r.pool.table("p2p_offers"), direction,
	)

	var rows []offerSchema

	err := r.pool.Do(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if err := db.SelectContext(ctx, &rows, db.Rebind(query), side.String()); err != nil {
			return domain.WrapError(err, errcodes.StoreUnavailable, "failed to select offers")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	offers := make([]entity.Offer, 0, len(rows))

	for _, row := range rows {
		offer, err := row.toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.StoreUnavailable, "failed to map offer "+row.ID)
		}

		offers = append(offers, offer)
	}

	return offers, nil
}

// GetLastUpdate ok=false, если сторона ещё ни разу не записывалась.
func (r *OfferRepository) GetLastUpdate(ctx context.Context, side entity.Side) (time.Time, bool, error) {
	query := fmt.Sprintf(
		`SELECT side, last_update, offers_count FROM %s WHERE side = ?`,
		r.pool.table("update_metadata"),
	)

	var row metadataSchema

	err := r.pool.Do(ctx, func(ctx context.Context, db *sqlx.DB) error {
		return db.GetContext(ctx, &row, db.Rebind(query), side.String())
	})

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return time.Time{}, false, nil
	case domain.HasCode(err, errcodes.StoreUnavailable):
		return time.Time{}, false, err
	case err != nil:
		return time.Time{}, false, domain.WrapError(err, errcodes.StoreUnavailable, "failed to get last update")
	}

	return row.toDomain().LastUpdate, true, nil
}

func (r *OfferRepository) GetMetadata(ctx context.Context) ([]entity.UpdateMetadata, error) {
	query := fmt.Sprintf(
		`SELECT side, last_update, offers_count FROM %s ORDER BY side`,
		r.pool.table("update_metadata"),
	)

	var rows []metadataSchema

	err := r.pool.Do(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if err := db.SelectContext(ctx, &rows, query); err != nil {
			return domain.WrapError(err, errcodes.StoreUnavailable, "failed to select metadata")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]entity.UpdateMetadata, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
