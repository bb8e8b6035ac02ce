package normalizer

import (
	"bytes"
	"strings"

	"github.com/samber/lo"
)

// Коды способов оплаты площадки. Таблица сверена с выдачей для пары USDT/RUB;
// новые коды не теряются, а выводятся как "Payment #<code>".
var paymentNames = map[string]string{ //nolint:gochecknoglobals
	"14":  "Bank Transfer",
	"51":  "Payeer",
	"62":  "QIWI",
	"64":  "Raiffeisenbank",
	"75":  "Tinkoff",
	"88":  "Home Credit Bank",
	"90":  "Cash Deposit to Bank",
	"102": "Gazprombank",
	"185": "Rosbank",
	"274": "YooMoney",
	"377": "Sberbank",
	"379": "Alfa-Bank",
	"381": "VTB",
	"382": "SBP",
	"383": "MTS Bank",
	"416": "Mobile Top-up",
	"581": "Ozon Bank",
	"582": "Pochta Bank",
	"585": "Sovcombank",
}

// DecodePayments переводит коды в отображаемые имена с сохранением порядка и без повторов.
func DecodePayments(codes []string) []string {
	names := make([]string, 0, len(codes))

	for _, code := range codes {
		if name := PaymentName(code); name != "" {
			names = append(names, name)
		}
	}

	return lo.Uniq(names)
}

func PaymentName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	if name, ok := paymentNames[code]; ok {
		return name
	}

	return "Payment #" + code
}

type paymentObject struct {
	Name        string     `json:"name"`
	PaymentType flexString `json:"paymentType"`
}

// decodePaymentEntries разбирает элементы payments: код строкой или числом, либо
// объект с name или paymentType. Нераспознанные элементы отбрасываются.
func decodePaymentEntries(raw []byte) []string {
	var entries []rawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 {
			continue
		}

		if entry[0] == '{' {
			var obj paymentObject
			if err := json.Unmarshal(entry, &obj); err != nil {
				continue
			}

			if name := strings.TrimSpace(obj.Name); name != "" {
				names = append(names, name)
			} else if name = PaymentName(string(obj.PaymentType)); name != "" {
				names = append(names, name)
			}

			continue
		}

		var code flexString
		if err := code.UnmarshalJSON(entry); err != nil {
			continue
		}

		if name := PaymentName(string(code)); name != "" {
			names = append(names, name)
		}
	}

	return lo.Uniq(names)
}
