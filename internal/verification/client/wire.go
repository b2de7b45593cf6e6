package client

import (
	"bytes"
	"encoding/json"

	"avelements/internal/address"
	"avelements/internal/verification/denormalize"
)

// usPayload is the domestic verification request body.
type usPayload struct {
	PrimaryLine   string `json:"primary_line"`
	SecondaryLine string `json:"secondary_line"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
}

// intlPayload is the international verification request body.
type intlPayload struct {
	PrimaryLine   string `json:"primary_line"`
	SecondaryLine string `json:"secondary_line"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

func buildPayload(f address.Fields, international bool) any {
	if international {
		return intlPayload{
			PrimaryLine:   f.Primary,
			SecondaryLine: f.Secondary,
			City:          f.City,
			State:         f.State,
			PostalCode:    f.Zip,
			Country:       address.CountryCode(f.Country),
		}
	}
	return usPayload{
		PrimaryLine:   f.Primary,
		SecondaryLine: f.Secondary,
		City:          f.City,
		State:         f.State,
		ZipCode:       f.Zip,
	}
}

// envelope is the optional proxy wrapper {statusCode, body}.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

type verifyResponse struct {
	Deliverability string `json:"deliverability"`
	PrimaryLine    string `json:"primary_line"`
	SecondaryLine  string `json:"secondary_line"`
	Components     struct {
		SecondaryDesignator string `json:"secondary_designator"`
	} `json:"components"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

var emptyData = json.RawMessage(`{}`)

// deliverabilities maps the service classification strings onto outcomes.
// "deliverable_missing_info" and "no_match" are international grades.
var deliverabilities = map[string]address.Outcome{
	"deliverable":                  address.OutcomeDeliverable,
	"deliverable_missing_info":     address.OutcomeDeliverableNeedsImprovement,
	"deliverable_missing_unit":     address.OutcomeDeliverableMissingUnit,
	"deliverable_unnecessary_unit": address.OutcomeDeliverableUnnecessaryUnit,
	"deliverable_incorrect_unit":   address.OutcomeDeliverableIncorrectUnit,
	"undeliverable":                address.OutcomeUndeliverable,
	"no_match":                     address.OutcomeUndeliverable,
}

// classify turns an HTTP status and body into a Result. It is total: every
// status/body combination maps to exactly one outcome.
func classify(status int, body []byte, messages address.Messages) Result {
	body = bytes.TrimSpace(body)

	if status == 401 {
		return Result{
			Outcome:  address.OutcomeUnauthorized,
			Code:     401,
			Data:     rawOrEmpty(body),
			Category: CategoryUnauthorized,
		}
	}
	if len(body) == 0 {
		return unavailable(CategoryNetworkUnavailable, emptyData)
	}
	if status != 200 {
		return unavailable(CategoryNetworkUnavailable, emptyData)
	}
	if !json.Valid(body) {
		return unavailable(CategoryMalformedResponse, emptyData)
	}

	payload := json.RawMessage(body)
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.StatusCode != 0 && env.StatusCode != 200 {
			return unavailable(CategoryNetworkUnavailable, payload)
		}
		if len(env.Body) > 0 && string(env.Body) != "null" {
			payload = env.Body
		}
	}

	var resp verifyResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		// Valid JSON of the wrong shape (an array, a string body).
		return unavailable(CategoryMalformedResponse, emptyData)
	}

	res := Result{
		Code: 200,
		Data: payload,
		Verified: &denormalize.Verified{
			PrimaryLine:   resp.PrimaryLine,
			SecondaryLine: resp.SecondaryLine,
			Designator:    resp.Components.SecondaryDesignator,
		},
	}

	if outcome, ok := deliverabilities[resp.Deliverability]; ok {
		res.Outcome = outcome
		res.Kind = outcome.Kind()
		if !outcome.IsDeliverable() || outcome.IsUnitIssue() {
			res.Category = CategoryKnownDeliverability
		}
		return res
	}

	message := resp.Deliverability
	if message == "" && resp.Error != nil {
		message = resp.Error.Message
	}
	res.Verified = nil
	kind := address.ResolveErrorKind(message, messages)
	if kind == address.KindDefault {
		res.Outcome = address.OutcomeUnknown
		res.Kind = address.KindDefault
		res.Category = CategoryUnknownDeliverability
		return res
	}
	res.Outcome = address.OutcomeInvalidInput
	res.Kind = kind
	res.Category = CategoryKnownDeliverability
	return res
}

func unavailable(category ErrorCategory, data json.RawMessage) Result {
	return Result{
		Outcome:  address.OutcomeServiceUnavailable,
		Code:     200,
		Data:     data,
		Category: category,
	}
}

func rawOrEmpty(body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	return emptyData
}
