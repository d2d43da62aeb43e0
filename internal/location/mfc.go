// Package location resolves invoice delivery addresses to Micro Fulfilment
// Centre identities using the MFC name-mapping table.
package location

import "strings"

// Table column names.
const (
	ColID                 = "ID"
	ColLocationName       = "LOCATION_NAME"
	ColFriendlyName       = "FRIENDLY_LOCATION_NAME"
	ColXeroName           = "XERO_NAME"
	ColAddress            = "LOCATION_ADDRESS"
	ColPostcode           = "POSTCODE"
	ColMorrisonsID        = "MORRISONS_ID"
	ColMorrisonsPostcode  = "MORRISONS_POSTCODE"
	ColBlakemorePostcode  = "BLAKEMORE_POSTCODE"
	ColWholegoodPostcode  = "WHOLEGOOD_POSTCODE"
	ColHTDrinksPostcode   = "HTDRINKS_POSTCODE"
	ColOnTheRocksPostcode = "ONTHEROCKS_POSTCODE"
)

// headerAliases maps historical spellings found in existing tables.
var headerAliases = map[string]string{
	"WHOLEOOD_POSTCODE": ColWholegoodPostcode,
}

// MFC is one delivery location. Vendor postcodes cross-reference the same
// site as it appears in each supplier's data.
type MFC struct {
	ID                 string `json:"id"`
	Name               string `json:"location_name"`
	FriendlyName       string `json:"friendly_location_name"`
	XeroName           string `json:"xero_name"`
	Address            string `json:"location_address"`
	Postcode           string `json:"postcode"`
	MorrisonsID        string `json:"morrisons_id,omitempty"`
	MorrisonsPostcode  string `json:"morrisons_postcode,omitempty"`
	BlakemorePostcode  string `json:"blakemore_postcode,omitempty"`
	WholegoodPostcode  string `json:"wholegood_postcode,omitempty"`
	HTDrinksPostcode   string `json:"htdrinks_postcode,omitempty"`
	OnTheRocksPostcode string `json:"ontherocks_postcode,omitempty"`
}

// IsValid reports whether the identity fields needed for filing are present.
func (m MFC) IsValid() bool {
	for _, v := range []string{m.Name, m.FriendlyName, m.XeroName, m.Postcode} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Postcodes returns the canonical postcode followed by the non-empty vendor alternates.
func (m MFC) Postcodes() []string {
	var out []string
	for _, pc := range []string{
		m.Postcode,
		m.MorrisonsPostcode,
		m.BlakemorePostcode,
		m.WholegoodPostcode,
		m.HTDrinksPostcode,
		m.OnTheRocksPostcode,
	} {
		if strings.TrimSpace(pc) != "" {
			out = append(out, pc)
		}
	}
	return out
}

// Row renders the record with the table's column names.
func (m MFC) Row() map[string]string {
	return map[string]string{
		ColID:                 m.ID,
		ColLocationName:       m.Name,
		ColFriendlyName:       m.FriendlyName,
		ColXeroName:           m.XeroName,
		ColAddress:            m.Address,
		ColPostcode:           m.Postcode,
		ColMorrisonsID:        m.MorrisonsID,
		ColMorrisonsPostcode:  m.MorrisonsPostcode,
		ColBlakemorePostcode:  m.BlakemorePostcode,
		ColWholegoodPostcode:  m.WholegoodPostcode,
		ColHTDrinksPostcode:   m.HTDrinksPostcode,
		ColOnTheRocksPostcode: m.OnTheRocksPostcode,
	}
}

func fromRow(row map[string]string) MFC {
	get := func(col string) string { return strings.TrimSpace(row[col]) }
	return MFC{
		ID:                 get(ColID),
		Name:               get(ColLocationName),
		FriendlyName:       get(ColFriendlyName),
		XeroName:           get(ColXeroName),
		Address:            get(ColAddress),
		Postcode:           get(ColPostcode),
		MorrisonsID:        get(ColMorrisonsID),
		MorrisonsPostcode:  get(ColMorrisonsPostcode),
		BlakemorePostcode:  get(ColBlakemorePostcode),
		WholegoodPostcode:  get(ColWholegoodPostcode),
		HTDrinksPostcode:   get(ColHTDrinksPostcode),
		OnTheRocksPostcode: get(ColOnTheRocksPostcode),
	}
}

// normalize upper-cases s and removes all whitespace so postcodes compare
// regardless of spacing.
func normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
