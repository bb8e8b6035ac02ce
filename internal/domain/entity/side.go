package entity

import (
	"strings"

	"p2p_market/internal/domain"
	"p2p_market/pkg/errcodes"
)

// Side направление рынка. Все данные и кэши разбиты по стороне.
type Side string

const (
	SideSell Side = "sell"
	SideBuy  Side = "buy"
)

func Sides() []Side {
	return []Side{SideSell, SideBuy}
}

// ParseSide принимает как имя стороны, так и вендорский код ("1" продажа, "0" покупка).
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sell", "1":
		return SideSell, nil
	case "buy", "0":
		return SideBuy, nil
	default:
		return "", domain.NewError(errcodes.InvalidSide, "side must be sell or buy, got "+s)
	}
}

func (s Side) String() string {
	return string(s)
}

// VendorCode значение поля side в запросе к площадке.
func (s Side) VendorCode() string {
	if s == SideBuy {
		return "0"
	}

	return "1"
}

// Ascending лучшая цена продажи минимальная, покупки максимальная.
func (s Side) Ascending() bool {
	return s != SideBuy
}
