package enums

import "fmt"

// Currency is the closed set of settlement currencies the storefront accepts.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyXAF Currency = "XAF"
)

var validCurrencies = []Currency{
	CurrencyUSD,
	CurrencyXAF,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Currency.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// MinorUnits returns the number of decimal places the currency carries.
// XAF has no minor unit.
func (c Currency) MinorUnits() int32 {
	if c == CurrencyXAF {
		return 0
	}
	return 2
}

// ParseCurrency converts raw input into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
