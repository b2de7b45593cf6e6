package httptransport

import (
	"strings"

	"avelements/internal/address"
	"avelements/internal/enrichment"
	dErrors "avelements/pkg/domain-errors"
)

const (
	maxFormIDLength = 128
	maxPageLength   = 256
	maxFieldLength  = 256
)

// EnrichRequest is the body of POST /v1/forms.
type EnrichRequest struct {
	ID         string            `json:"id"`
	Page       string            `json:"page"`
	InForm     bool              `json:"in_form"`
	HasPrimary bool              `json:"has_primary"`
	HasMessage bool              `json:"has_message"`
	Attributes map[string]string `json:"attributes"`
	ParseError string            `json:"parse_error"`
}

// Validate implements httputil.Validatable.
func (r *EnrichRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "id is required")
	}
	if len(r.ID) > maxFormIDLength {
		return dErrors.New(dErrors.CodeValidation, "id must be at most 128 characters")
	}
	r.Page = strings.TrimSpace(r.Page)
	if len(r.Page) > maxPageLength {
		return dErrors.New(dErrors.CodeValidation, "page must be at most 256 characters")
	}
	return nil
}

func (r *EnrichRequest) Descriptor() enrichment.Descriptor {
	return enrichment.Descriptor{
		ID:         r.ID,
		Page:       r.Page,
		InForm:     r.InForm,
		HasPrimary: r.HasPrimary,
		HasMessage: r.HasMessage,
		Attributes: r.Attributes,
		ParseError: r.ParseError,
	}
}

// SubmitRequest is the body of POST /v1/forms/{formID}/submit.
type SubmitRequest struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// Validate implements httputil.Validatable. Empty fields are allowed: the
// verification service reports what is missing.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for _, v := range []string{r.Primary, r.Secondary, r.City, r.State, r.Zip, r.Country} {
		if len(v) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, "address fields must be at most 256 characters")
		}
	}
	return nil
}

func (r *SubmitRequest) Fields() address.Fields {
	return address.Fields{
		Primary:   r.Primary,
		Secondary: r.Secondary,
		City:      r.City,
		State:     r.State,
		Zip:       r.Zip,
		Country:   r.Country,
	}
}
