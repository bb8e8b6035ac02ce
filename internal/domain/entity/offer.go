package entity

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Offer нормализованное объявление площадки.
type Offer struct {
	ID                string
	Side              Side
	Price             decimal.Decimal
	MinAmount         decimal.Decimal
	MaxAmount         decimal.Decimal
	AvailableQuantity decimal.Decimal
	MakerName         string
	MakerID           string
	PaymentMethods    []string
	IsOnline          bool
	LastLogoutTime    string
	IsTriangle        bool
	MerchantTier      MerchantTier
	// CompletionRate по факту число недавних ордеров (recentOrderNum).
	CompletionRate int
	// TotalOrders по факту недавний процент исполнения (recentExecuteRate).
	TotalOrders int
}

func (o Offer) IsMerchant() bool {
	return o.MerchantTier != TierNone && o.MerchantTier != ""
}

func (o Offer) IsBlockTrade() bool {
	return o.MerchantTier == TierBlockTrade
}

// Clone возвращает копию без общих слайсов.
func (o Offer) Clone() Offer {
	o.PaymentMethods = slices.Clone(o.PaymentMethods)

	return o
}

func CloneOffers(offers []Offer) []Offer {
	if offers == nil {
		return nil
	}

	out := make([]Offer, len(offers))
	for i := range offers {
		out[i] = offers[i].Clone()
	}

	return out
}
