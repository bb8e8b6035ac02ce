package normalizer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Площадка отдаёт одни и те же поля то строкой, то числом.

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("json.Unmarshal: %w", err)
		}

		*s = flexString(v)

		return nil
	}

	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("not a string or number: %s", b)
	}

	*s = flexString(b)

	return nil
}

type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}

	if s == "" {
		d.Decimal = decimal.Zero

		return nil
	}

	v, err := decimal.NewFromString(string(s))
	if err != nil {
		return fmt.Errorf("decimal.NewFromString: %w", err)
	}

	d.Decimal = v

	return nil
}

type flexInt int

func (i *flexInt) UnmarshalJSON(b []byte) error {
	var d flexDecimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}

	*i = flexInt(d.IntPart())

	return nil
}
