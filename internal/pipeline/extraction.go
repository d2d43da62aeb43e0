package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoicefiler/internal/diag"
	"invoicefiler/internal/extract"
	"invoicefiler/internal/invoice"
	"invoicefiler/internal/vendor"
)

// Extraction is everything read from one invoice's text before filing.
type Extraction struct {
	Metadata   invoice.Metadata   `json:"-"`
	Financials invoice.Financials `json:"-"`

	// Address is the text the delivery location is looked up in.
	Address string            `json:"address"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Extract applies the vendor pattern tables to text. Missing fields are
// left empty and missing amounts are zero; nothing here fails.
func Extract(text string, cfg vendor.Config, c *diag.Collector) Extraction {
	md := invoice.NewMetadata(
		cfg.Vendor,
		lookup(text, vendor.InvoiceNo, cfg.Metadata),
		lookup(text, vendor.InvoiceDate, cfg.Metadata),
		lookup(text, vendor.POReference, cfg.Metadata),
		lookup(text, vendor.InvoiceType, cfg.Metadata),
		c,
	)

	fin := invoice.Financials{
		Net0:          amount(text, vendor.Net0, cfg.Financials, c),
		VAT0:          amount(text, vendor.VAT0, cfg.Financials, c),
		Net5:          amount(text, vendor.Net5, cfg.Financials, c),
		VAT5:          amount(text, vendor.VAT5, cfg.Financials, c),
		Net20:         amount(text, vendor.Net20, cfg.Financials, c),
		VAT20:         amount(text, vendor.VAT20, cfg.Financials, c),
		ExpectedNet:   expected(text, vendor.ExpectedNet, cfg.Financials, c),
		ExpectedVAT:   expected(text, vendor.ExpectedVAT, cfg.Financials, c),
		ExpectedGross: expected(text, vendor.ExpectedGross, cfg.Financials, c),
	}

	var extra map[string]string
	for key := range cfg.Regen {
		if v, ok := extract.Field(text, key, cfg.Regen); ok {
			if extra == nil {
				extra = make(map[string]string)
			}
			extra[key] = v
		}
	}

	return Extraction{
		Metadata:   md,
		Financials: fin,
		Address:    DeliveryAddress(text, cfg.Address),
		Extra:      extra,
	}
}

// DeliveryAddress narrows text to the part holding the delivery address.
// In order: the delivery_address capture, the lines between address_start
// and address_stop, the header lines before header_stop, the whole text.
func DeliveryAddress(text string, table extract.Patterns) string {
	if v := lookup(text, vendor.DeliveryAddress, table); v != "" {
		return v
	}
	start, hasStart := table[vendor.AddressStart]
	stop, hasStop := table[vendor.AddressStop]
	if hasStart && hasStop {
		if v := extract.JoinLines(extract.BetweenPatterns(text, start, stop, false, false), "\n"); v != "" {
			return v
		}
	}
	if stop, ok := table[vendor.HeaderStop]; ok {
		if v := extract.JoinLines(extract.UntilPattern(text, stop), "\n"); v != "" {
			return v
		}
	}
	return text
}

// lookup reads key only when the table defines it. Field would otherwise
// treat the bare key as a regex.
func lookup(text, key string, table extract.Patterns) string {
	if _, ok := table[key]; !ok {
		return ""
	}
	v, _ := extract.Field(text, key, table)
	return strings.TrimSpace(v)
}

func amount(text, key string, table extract.Patterns, c *diag.Collector) decimal.Decimal {
	v := lookup(text, key, table)
	if v == "" {
		return decimal.Zero
	}
	return extract.CleanAmount(v, c)
}

func expected(text, key string, table extract.Patterns, c *diag.Collector) decimal.NullDecimal {
	v := lookup(text, key, table)
	if v == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(extract.CleanAmount(v, c))
}
