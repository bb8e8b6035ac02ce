package entity

// MerchantTier уровень верифицированного мерчанта.
type MerchantTier string

const (
	TierNone       MerchantTier = "none"
	TierBronze     MerchantTier = "bronze"
	TierSilver     MerchantTier = "silver"
	TierGold       MerchantTier = "gold"
	TierBlockTrade MerchantTier = "block_trade"
)

func (t MerchantTier) String() string {
	return string(t)
}

// Badge имя иконки для клиента, пустая строка для обычного продавца.
func (t MerchantTier) Badge() string {
	switch t {
	case TierGold:
		return "vaGoldIcon"
	case TierSilver:
		return "vaSilverIcon"
	case TierBronze:
		return "vaBronzeIcon"
	case TierBlockTrade:
		return "baIcon"
	default:
		return ""
	}
}

func ParseMerchantTier(s string) MerchantTier {
	switch t := MerchantTier(s); t {
	case TierBronze, TierSilver, TierGold, TierBlockTrade:
		return t
	default:
		return TierNone
	}
}
