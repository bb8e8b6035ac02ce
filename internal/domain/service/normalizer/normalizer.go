// Package normalizer приводит сырые записи площадки к entity.Offer.
// Пакет не делает ввода-вывода и безопасен для конкурентного использования.
package normalizer

import (
	"bytes"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"p2p_market/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type rawMessage = jsoniter.RawMessage

const unknownMaker = "Unknown"

var triangleTolerance = decimal.NewFromInt(1) //nolint:gochecknoglobals

type vendorItem struct {
	ID                flexString          `json:"id"`
	Price             flexDecimal         `json:"price"`
	NickName          string              `json:"nickName"`
	UserID            flexString          `json:"userId"`
	LastQuantity      flexDecimal         `json:"lastQuantity"`
	MinAmount         flexDecimal         `json:"minAmount"`
	MaxAmount         flexDecimal         `json:"maxAmount"`
	Payments          jsoniter.RawMessage `json:"payments"`
	IsOnline          bool                `json:"isOnline"`
	LastLogoutTime    flexString          `json:"lastLogoutTime"`
	AuthTag           jsoniter.RawMessage `json:"authTag"`
	RecentOrderNum    flexInt             `json:"recentOrderNum"`
	RecentExecuteRate flexInt             `json:"recentExecuteRate"`
}

// Normalize разбирает одну запись выдачи. false означает, что запись
// не объект, не разбирается или нарушает неотрицательность сумм.
func Normalize(raw []byte, side entity.Side) (entity.Offer, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return entity.Offer{}, false
	}

	var item vendorItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return entity.Offer{}, false
	}

	if item.ID == "" {
		return entity.Offer{}, false
	}

	for _, d := range []decimal.Decimal{
		item.Price.Decimal,
		item.MinAmount.Decimal,
		item.MaxAmount.Decimal,
		item.LastQuantity.Decimal,
	} {
		if d.IsNegative() {
			return entity.Offer{}, false
		}
	}

	makerName := strings.TrimSpace(item.NickName)
	if makerName == "" {
		makerName = unknownMaker
	}

	return entity.Offer{
		ID:                string(item.ID),
		Side:              side,
		Price:             item.Price.Decimal,
		MinAmount:         item.MinAmount.Decimal,
		MaxAmount:         item.MaxAmount.Decimal,
		AvailableQuantity: item.LastQuantity.Decimal,
		MakerName:         makerName,
		MakerID:           string(item.UserID),
		PaymentMethods:    decodePaymentEntries(item.Payments),
		IsOnline:          item.IsOnline,
		LastLogoutTime:    string(item.LastLogoutTime),
		IsTriangle:        IsTriangle(item.MinAmount.Decimal, item.MaxAmount.Decimal),
		MerchantTier:      ClassifyTier(decodeTags(item.AuthTag)),
		CompletionRate:    int(item.RecentOrderNum),
		TotalOrders:       int(item.RecentExecuteRate),
	}, true
}

// NormalizeAll сохраняет порядок выдачи и возвращает число пропущенных записей.
func NormalizeAll[T ~[]byte](items []T, side entity.Side) ([]entity.Offer, int) {
	offers := make([]entity.Offer, 0, len(items))
	skipped := 0

	for _, raw := range items {
		offer, ok := Normalize([]byte(raw), side)
		if !ok {
			skipped++

			continue
		}

		offers = append(offers, offer)
	}

	return offers, skipped
}

// IsTriangle отмечает объявления с узким диапазоном: |max - min| <= 1.
func IsTriangle(minAmount, maxAmount decimal.Decimal) bool {
	return maxAmount.Sub(minAmount).Abs().LessThanOrEqual(triangleTolerance)
}

// ClassifyTier выбирает уровень по первому совпадению: VA3, VA2, VA1 или VA, затем BA.
// Тег BA без тегов VA даёт уровень BlockTrade, при наличии VA побеждает VA.
func ClassifyTier(tags []string) entity.MerchantTier {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[strings.ToUpper(strings.TrimSpace(tag))] = struct{}{}
	}

	has := func(tag string) bool {
		_, ok := set[tag]

		return ok
	}

	switch {
	case has("VA3"):
		return entity.TierGold
	case has("VA2"):
		return entity.TierSilver
	case has("VA1"), has("VA"):
		return entity.TierBronze
	case has("BA"):
		return entity.TierBlockTrade
	default:
		return entity.TierNone
	}
}

func decodeTags(raw []byte) []string {
	var entries []rawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	tags := make([]string, 0, len(entries))

	for _, entry := range entries {
		var tag flexString
		if err := tag.UnmarshalJSON(entry); err != nil {
			continue
		}

		tags = append(tags, string(tag))
	}

	return tags
}
