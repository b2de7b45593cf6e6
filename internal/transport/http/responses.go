package httptransport

import (
	"time"

	"avelements/internal/address"
	"avelements/internal/enrichment"
	"avelements/internal/events"
	"avelements/internal/gateway"
	"avelements/internal/verification/client"
	"avelements/internal/verification/form"
)

// MessageResponse is one message to render on the page.
type MessageResponse struct {
	Target string `json:"target"`
	Text   string `json:"text"`
	HTML   bool   `json:"html"`
}

// EventResponse is one event emitted during the request.
type EventResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Payload   events.Payload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// ConfigResponse summarizes the controller configuration of a form.
type ConfigResponse struct {
	Strictness  string `json:"strictness"`
	Denormalize bool   `json:"denormalize"`
	Autosubmit  bool   `json:"autosubmit"`
}

// EnrichResponse is the response of POST /v1/forms.
type EnrichResponse struct {
	FormID        string               `json:"form_id"`
	Page          enrichment.PageState `json:"page"`
	Config        ConfigResponse       `json:"config"`
	Wired         bool                 `json:"wired"`
	InjectMessage bool                 `json:"inject_message"`
	InjectStyles  StylesResponse       `json:"inject_styles"`
	Messages      []MessageResponse    `json:"messages"`
	Events        []EventResponse      `json:"events"`
}

// StylesResponse lists the stylesheets the page still needs.
type StylesResponse struct {
	VerifyMessage bool `json:"verify_message"`
	Autocomplete  bool `json:"autocomplete"`
}

// SubmitResponse is the response of POST /v1/forms/{formID}/submit.
type SubmitResponse struct {
	FormID    string            `json:"form_id"`
	AttemptID string            `json:"attempt_id"`
	Allowed   bool              `json:"allowed"`
	Submitted bool              `json:"submitted"`
	Outcome   string            `json:"outcome"`
	Reason    string            `json:"reason"`
	Fields    FieldsResponse    `json:"fields"`
	Messages  []MessageResponse `json:"messages"`
	Events    []EventResponse   `json:"events"`
}

// FieldsResponse holds the form values after the attempt, including any
// correction written back by the verification.
type FieldsResponse struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country,omitempty"`
}

// AutocompleteResponse is the response of GET /v1/autocomplete.
type AutocompleteResponse struct {
	Suggestions []client.Suggestion `json:"suggestions"`
}

// EventListResponse is the response of GET /admin/forms/{formID}/events.
type EventListResponse struct {
	FormID string          `json:"form_id"`
	Events []EventResponse `json:"events"`
}

func FromEnrichResult(res *gateway.EnrichResult) *EnrichResponse {
	return &EnrichResponse{
		FormID: res.FormID,
		Page:   res.Page,
		Config: ConfigResponse{
			Strictness:  string(res.Config.Strictness),
			Denormalize: res.Config.Denormalize,
			Autosubmit:  res.Config.Autosubmit,
		},
		Wired:         res.Wired,
		InjectMessage: res.InjectMessage,
		InjectStyles: StylesResponse{
			VerifyMessage: res.InjectStyles.VerifyMessage,
			Autocomplete:  res.InjectStyles.Autocomplete,
		},
		Messages:      fromMessages(res.Messages),
		Events:        fromEvents(res.Events),
	}
}

func FromSubmitResult(res *gateway.SubmitResult) *SubmitResponse {
	return &SubmitResponse{
		FormID:    res.FormID,
		AttemptID: res.AttemptID,
		Allowed:   res.Allowed,
		Submitted: res.Submitted,
		Outcome:   string(res.Outcome),
		Reason:    res.Reason,
		Fields:    fromFields(res.Fields),
		Messages:  fromMessages(res.Messages),
		Events:    fromEvents(res.Events),
	}
}

func fromFields(f address.Fields) FieldsResponse {
	return FieldsResponse{
		Primary:   f.Primary,
		Secondary: f.Secondary,
		City:      f.City,
		State:     f.State,
		Zip:       f.Zip,
		Country:   f.Country,
	}
}

func fromMessages(msgs []form.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageResponse{Target: string(m.Target), Text: m.Text, HTML: m.HTML})
	}
	return out
}

func fromEvents(evs []events.Event) []EventResponse {
	out := make([]EventResponse, 0, len(evs))
	for _, e := range evs {
		out = append(out, EventResponse{
			ID:        e.ID.String(),
			Name:      e.Name,
			Payload:   e.Payload,
			Timestamp: e.Timestamp,
		})
	}
	return out
}
