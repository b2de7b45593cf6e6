package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyPrefix is returned when an autocompletion lookup has nothing to complete.
var ErrEmptyPrefix = errors.New("address prefix is required")

// AutocompleteRequest narrows suggestions for a partially typed primary line.
type AutocompleteRequest struct {
	Prefix string `json:"address_prefix"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip_code,omitempty"`
}

// Suggestion is one completion candidate.
type Suggestion struct {
	PrimaryLine string `json:"primary_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
}

type autocompleteResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Autocomplete returns suggestions in the order the service ranked them.
// Unlike Verify it reports failures, as *Error values, because there is no
// submission to fail open.
func (c *Client) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Suggestion, error) {
	req.Prefix = strings.TrimSpace(req.Prefix)
	if req.Prefix == "" {
		return nil, ErrEmptyPrefix
	}

	ctx, span := c.tracer.Start(ctx, "verification.autocomplete", trace.WithAttributes(
		attribute.Int("av.prefix_length", len(req.Prefix)),
	))
	defer span.End()

	status, body, err := c.post(ctx, "autocomplete", c.endpoints.Autocomplete, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CategoryOf(err)))
		return nil, err
	}

	op := "POST autocomplete"
	switch {
	case status == 401:
		return nil, &Error{Category: CategoryUnauthorized, Op: op, Status: status}
	case status != 200:
		return nil, &Error{Category: CategoryNetworkUnavailable, Op: op, Status: status}
	}

	var resp autocompleteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.WarnContext(ctx, "autocomplete response is not valid JSON", "error", err)
		return nil, &Error{Category: CategoryMalformedResponse, Op: op, Status: status, Err: err}
	}
	span.SetAttributes(attribute.Int("av.suggestions", len(resp.Suggestions)))
	return resp.Suggestions, nil
}
