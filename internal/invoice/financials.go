package invoice

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the largest difference between a computed and a
// stated total that still counts as a match.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// Check keys recorded by ValidateTotals.
const (
	NetMatch   = "net_match"
	VATMatch   = "vat_match"
	GrossMatch = "gross_match"
)

// Financials holds the net and VAT amounts per VAT band and the totals the
// document itself states, when it states them.
type Financials struct {
	Net0  decimal.Decimal
	VAT0  decimal.Decimal
	Net5  decimal.Decimal
	VAT5  decimal.Decimal
	Net20 decimal.Decimal
	VAT20 decimal.Decimal

	ExpectedNet   decimal.NullDecimal
	ExpectedVAT   decimal.NullDecimal
	ExpectedGross decimal.NullDecimal
}

// Gross0 is net plus VAT in the zero-rated band.
func (f Financials) Gross0() decimal.Decimal { return f.Net0.Add(f.VAT0) }

// Gross5 is net plus VAT in the 5% band.
func (f Financials) Gross5() decimal.Decimal { return f.Net5.Add(f.VAT5) }

// Gross20 is net plus VAT in the 20% band.
func (f Financials) Gross20() decimal.Decimal { return f.Net20.Add(f.VAT20) }

// TotalNet sums net across all bands.
func (f Financials) TotalNet() decimal.Decimal {
	return f.Net0.Add(f.Net5).Add(f.Net20)
}

// TotalVAT sums VAT across all bands.
func (f Financials) TotalVAT() decimal.Decimal {
	return f.VAT0.Add(f.VAT5).Add(f.VAT20)
}

// TotalGross is TotalNet plus TotalVAT.
func (f Financials) TotalGross() decimal.Decimal {
	return f.TotalNet().Add(f.TotalVAT())
}

// TotalsCheck maps a check key to whether the computed total matched.
// Only totals the document stated are present.
type TotalsCheck map[string]bool

// Valid is true when every recorded check passed, including when none were recorded.
func (tc TotalsCheck) Valid() bool {
	for _, ok := range tc {
		if !ok {
			return false
		}
	}
	return true
}

// Failed returns the keys of failed checks in sorted order.
func (tc TotalsCheck) Failed() []string {
	var out []string
	for k, ok := range tc {
		if !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ValidateTotals compares computed totals against the stated ones.
func (f Financials) ValidateTotals(tolerance decimal.Decimal) TotalsCheck {
	tc := TotalsCheck{}
	within := func(computed decimal.Decimal, expected decimal.NullDecimal) bool {
		return computed.Sub(expected.Decimal).Abs().LessThanOrEqual(tolerance)
	}
	if f.ExpectedNet.Valid {
		tc[NetMatch] = within(f.TotalNet(), f.ExpectedNet)
	}
	if f.ExpectedVAT.Valid {
		tc[VATMatch] = within(f.TotalVAT(), f.ExpectedVAT)
	}
	if f.ExpectedGross.Valid {
		tc[GrossMatch] = within(f.TotalGross(), f.ExpectedGross)
	}
	return tc
}

// IsValid validates with DefaultTolerance.
func (f Financials) IsValid() bool {
	return f.ValidateTotals(DefaultTolerance).Valid()
}

// Fields renders each band and total to two decimal places.
func (f Financials) Fields() map[string]string {
	return map[string]string{
		"Net 0%":      money(f.Net0),
		"VAT 0%":      money(f.VAT0),
		"Gross 0%":    money(f.Gross0()),
		"Net 5%":      money(f.Net5),
		"VAT 5%":      money(f.VAT5),
		"Gross 5%":    money(f.Gross5()),
		"Net 20%":     money(f.Net20),
		"VAT 20%":     money(f.VAT20),
		"Gross 20%":   money(f.Gross20()),
		"Total Net":   money(f.TotalNet()),
		"Total VAT":   money(f.TotalVAT()),
		"Total Gross": money(f.TotalGross()),
	}
}

func (f Financials) String() string {
	return fmt.Sprintf("Total Net: £%s, VAT: £%s, Gross: £%s",
		money(f.TotalNet()), money(f.TotalVAT()), money(f.TotalGross()))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
