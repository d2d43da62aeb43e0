package extract

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"invoicefiler/internal/diag"
)

var currencyReplacer = strings.NewReplacer(
	"£", "",
	"$", "",
	"€", "",
	"GBP", "",
	"EUR", "",
	"USD", "",
	",", "",
)

// CleanAmount turns an extracted currency value into a decimal. Numbers pass
// through; nil, empty and unsupported values give zero. A string that cannot
// be parsed after stripping symbols and separators gives zero and records a
// warning on c.
func CleanAmount(v any, c *diag.Collector) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case float64:
		if !finite(n, c) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		if !finite(float64(n), c) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int8:
		return decimal.NewFromInt(int64(n))
	case int16:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case uint:
		return decimal.NewFromUint64(uint64(n))
	case uint8:
		return decimal.NewFromUint64(uint64(n))
	case uint16:
		return decimal.NewFromUint64(uint64(n))
	case uint32:
		return decimal.NewFromUint64(uint64(n))
	case uint64:
		return decimal.NewFromUint64(n)
	case string:
		return parseCurrencyString(n, c)
	case *string:
		if n == nil {
			return decimal.Zero
		}
		return parseCurrencyString(*n, c)
	default:
		return decimal.Zero
	}
}

// CleanCurrency is CleanAmount as a float64.
func CleanCurrency(v any, c *diag.Collector) float64 {
	return CleanAmount(v, c).InexactFloat64()
}

// finite reports whether n can be held as a decimal, warning when it cannot.
func finite(n float64, c *diag.Collector) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		c.Warn("CleanCurrency", "", fmt.Sprint(n), "not a finite amount")
		return false
	}
	return true
}

func parseCurrencyString(s string, c *diag.Collector) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, currencyReplacer.Replace(s))
	if cleaned == "" {
		c.Warn("CleanCurrency", "", s, "could not parse currency value: no digits")
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		c.Warn("CleanCurrency", "", s, fmt.Sprintf("could not parse currency value: %v", err))
		return decimal.Zero
	}
	return d
}
