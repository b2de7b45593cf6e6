// Package enrichment decides which address behaviours a form receives and
// builds the per-form controller configuration from its declared attributes.
package enrichment

import "strings"

// Attribute names a form may declare. Lookups are case-insensitive and
// tolerate the "data-lob-" prefix.
const (
	AttrVerify        = "verify"
	AttrVerifyMessage = "verify-message"
	AttrPrimary       = "primary"
	AttrSecondary     = "secondary"
	AttrEnv           = "env"
	AttrKey           = "key"
	AttrAutosubmit    = "autosubmit"
	AttrState         = "state"
)

const attrPrefix = "data-lob-"

// Descriptor is what a page reports about one candidate form. The DOM scan
// that produces it lives in the page; the gateway only sees this summary.
type Descriptor struct {
	ID string `json:"id"`
	// Page identifies the document the form lives on. Forms sharing a page
	// share its stylesheets.
	Page string `json:"page,omitempty"`
	// InForm is set when the primary address field sits inside a form.
	InForm bool `json:"in_form"`
	// HasPrimary is set when a primary address field was found.
	HasPrimary bool `json:"has_primary"`
	// HasMessage is set when the form already carries a verify-message element.
	HasMessage bool `json:"has_message"`
	// Attributes holds the form's data attributes by name.
	Attributes map[string]string `json:"attributes,omitempty"`
	// ParseError describes fields the page could not locate.
	ParseError string `json:"parse_error,omitempty"`
}

// Value returns the attribute name, trimmed.
func (d Descriptor) Value(name string) string {
	name = strings.ToLower(name)
	for k, v := range d.Attributes {
		k = strings.ToLower(k)
		if k == name || k == attrPrefix+name {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// PageKey returns Page, or the form id when the page did not identify itself.
func (d Descriptor) PageKey() string {
	if d.Page != "" {
		return d.Page
	}
	return "form:" + d.ID
}
