// Package address holds the vocabulary shared by the verification engine:
// field names, value snapshots, strictness levels, error kinds and the
// user-facing message catalogue.
package address

import "strings"

// Field names a semantic input of an address form.
type Field string

const (
	FieldPrimary   Field = "primary"
	FieldSecondary Field = "secondary"
	FieldCity      Field = "city"
	FieldState     Field = "state"
	FieldZip       Field = "zip"
	FieldCountry   Field = "country"
)

// TrackedFields lists the fields captured in a snapshot, in display order.
var TrackedFields = []Field{
	FieldPrimary,
	FieldSecondary,
	FieldCity,
	FieldState,
	FieldZip,
	FieldCountry,
}

// Fields is a point-in-time copy of the values of an address form.
type Fields struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// Get returns the value of a field, or "" for an unknown field.
func (f Fields) Get(field Field) string {
	switch field {
	case FieldPrimary:
		return f.Primary
	case FieldSecondary:
		return f.Secondary
	case FieldCity:
		return f.City
	case FieldState:
		return f.State
	case FieldZip:
		return f.Zip
	case FieldCountry:
		return f.Country
	default:
		return ""
	}
}

// With returns a copy of f with one field replaced.
func (f Fields) With(field Field, value string) Fields {
	switch field {
	case FieldPrimary:
		f.Primary = value
	case FieldSecondary:
		f.Secondary = value
	case FieldCity:
		f.City = value
	case FieldState:
		f.State = value
	case FieldZip:
		f.Zip = value
	case FieldCountry:
		f.Country = value
	}
	return f
}

// EqualFold reports whether every tracked field of f matches other, ignoring case.
func (f Fields) EqualFold(other Fields) bool {
	for _, field := range TrackedFields {
		if !strings.EqualFold(f.Get(field), other.Get(field)) {
			return false
		}
	}
	return true
}

// IsInternational reports whether the country field routes the address to
// the international endpoint.
func (f Fields) IsInternational() bool {
	return IsInternational(f.Country)
}
