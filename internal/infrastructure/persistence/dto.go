package persistence

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"p2p_market/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// offerSchema строка таблицы p2p_offers. position ранг в выдаче площадки.
type offerSchema struct {
	ID                string          `db:"id"`
	Side              string          `db:"side"`
	Position          int             `db:"position"`
	Price             decimal.Decimal `db:"price"`
	MinAmount         decimal.Decimal `db:"min_amount"`
	MaxAmount         decimal.Decimal `db:"max_amount"`
	AvailableQuantity decimal.Decimal `db:"available_quantity"`
	MakerName         string          `db:"maker_name"`
	MakerID           string          `db:"maker_id"`
	PaymentMethods    string          `db:"payment_methods"`
	IsOnline          bool            `db:"is_online"`
	LastLogoutTime    string          `db:"last_logout_time"`
	IsTriangle        bool            `db:"is_triangle"`
	MerchantTier      string          `db:"merchant_tier"`
	CompletionRate    int             `db:"completion_rate"`
	TotalOrders       int             `db:"total_orders"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func fromOffer(o entity.Offer, position int, at time.Time) (offerSchema, error) {
	methods := o.PaymentMethods
	if methods == nil {
		methods = []string{}
	}

	payments, err := json.Marshal(methods)
	if err != nil {
		return offerSchema{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return offerSchema{
		ID:                o.ID,
		Side:              o.Side.String(),
		Position:          position,
		Price:             o.Price,
		MinAmount:         o.MinAmount,
		MaxAmount:         o.MaxAmount,
		AvailableQuantity: o.AvailableQuantity,
		MakerName:         o.MakerName,
		MakerID:           o.MakerID,
		PaymentMethods:    string(payments),
		IsOnline:          o.IsOnline,
		LastLogoutTime:    o.LastLogoutTime,
		IsTriangle:        o.IsTriangle,
		MerchantTier:      o.MerchantTier.String(),
		CompletionRate:    o.CompletionRate,
		TotalOrders:       o.TotalOrders,
		UpdatedAt:         at,
	}, nil
}

func (s offerSchema) toDomain() (entity.Offer, error) {
	var methods []string
	if s.PaymentMethods != "" {
		if err := json.Unmarshal([]byte(s.PaymentMethods), &methods); err != nil {
			return entity.Offer{}, fmt.Errorf("json.Unmarshal(payment_methods): %w", err)
		}
	}

	return entity.Offer{
		ID:                s.ID,
		Side:              entity.Side(s.Side),
		Price:             s.Price,
		MinAmount:         s.MinAmount,
		MaxAmount:         s.MaxAmount,
		AvailableQuantity: s.AvailableQuantity,
		MakerName:         s.MakerName,
		MakerID:           s.MakerID,
		PaymentMethods:    methods,
		IsOnline:          s.IsOnline,
		LastLogoutTime:    s.LastLogoutTime,
		IsTriangle:        s.IsTriangle,
		MerchantTier:      entity.ParseMerchantTier(s.MerchantTier),
		CompletionRate:    s.CompletionRate,
		TotalOrders:       s.TotalOrders,
	}, nil
}

type metadataSchema struct {
	Side        string    `db:"side"`
	LastUpdate  time.Time `db:"last_update"`
	OffersCount int       `db:"offers_count"`
}

func (s metadataSchema) toDomain() entity.UpdateMetadata {
	return entity.UpdateMetadata{
		Side:        entity.Side(s.Side),
		LastUpdate:  s.LastUpdate.UTC(),
		OffersCount: s.OffersCount,
	}
}

type settingSchema struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
	UpdatedBy string    `db:"updated_by"`
}

func (s settingSchema) toDomain() entity.SystemSetting {
	return entity.SystemSetting{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt.UTC(),
		UpdatedBy: s.UpdatedBy,
	}
}

// storeTime время в UTC с точностью хранилища.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
