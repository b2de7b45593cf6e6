package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"avelements/internal/address"
	"avelements/pkg/platform/circuit"
)

type ClientSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	hits    atomic.Int32

	mu   sync.Mutex
	last *http.Request
	body []byte
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.hits.Store(0)
	s.handler = nil
	s.last, s.body = nil, nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.body, s.last = body, r.Clone(context.Background())
		s.mu.Unlock()
		if s.handler != nil {
			s.handler(w, r)
		}
	}))
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

// received returns the last request the server saw and its body.
func (s *ClientSuite) received() (*http.Request, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.body
}

func (s *ClientSuite) newClient(opts ...Option) *Client {
	return New(EndpointsFor(s.server.URL), opts...)
}

func (s *ClientSuite) respond(status int, body string) {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func domestic() address.Fields {
	return address.Fields{
		Primary:   "185 Berry St",
		Secondary: "Ste 6100",
		City:      "San Francisco",
		State:     "CA",
		Zip:       "94107",
	}
}

func (s *ClientSuite) TestRequestShape() {
	s.respond(200, `{"deliverability":"deliverable"}`)
	c := s.newClient(WithAPIKey("test_key"), WithOrigin("https://shop.example.com/checkout"))

	c.Verify(context.Background(), domestic())

	last, body := s.received()
	s.Require().NotNil(last)
	s.Equal(http.MethodPost, last.Method)
	s.Equal("/v1/us_verifications", last.URL.Path)
	s.Equal("https://shop.example.com/checkout", last.URL.Query().Get("av_integration_origin"))
	s.Equal(IntegrationTag, last.URL.Query().Get("integration"))
	s.Equal("application/json", last.Header.Get("Content-Type"))
	s.Equal("Basic "+base64.StdEncoding.EncodeToString([]byte("test_key:")), last.Header.Get("Authorization"))

	var payload map[string]string
	s.Require().NoError(json.Unmarshal(body, &payload))
	s.Equal(map[string]string{
		"primary_line":   "185 Berry St",
		"secondary_line": "Ste 6100",
		"city":           "San Francisco",
		"state":          "CA",
		"zip_code":       "94107",
	}, payload)
}

func (s *ClientSuite) TestNoAuthorizationWithoutKey() {
	s.respond(200, `{"deliverability":"deliverable"}`)
	s.newClient().Verify(context.Background(), domestic())
	last, _ := s.received()
	s.Require().NotNil(last)
	s.Empty(last.Header.Get("Authorization"))
}

func (s *ClientSuite) TestDeliverabilityClassification() {
	cases := []struct {
		deliverability string
		outcome        address.Outcome
		kind           address.ErrorKind
	}{
		{"deliverable", address.OutcomeDeliverable, ""},
		{"deliverable_missing_info", address.OutcomeDeliverableNeedsImprovement, ""},
		{"deliverable_missing_unit", address.OutcomeDeliverableMissingUnit, address.KindMissingUnit},
		{"deliverable_unnecessary_unit", address.OutcomeDeliverableUnnecessaryUnit, address.KindUnnecessaryUnit},
		{"deliverable_incorrect_unit", address.OutcomeDeliverableIncorrectUnit, address.KindIncorrectUnit},
		{"undeliverable", address.OutcomeUndeliverable, address.KindUndeliverable},
		{"no_match", address.OutcomeUndeliverable, address.KindUndeliverable},
		{"something_new", address.OutcomeUnknown, address.KindDefault},
	}
	for _, tc := range cases {
		s.Run(tc.deliverability, func() {
			s.respond(200, `{"deliverability":"`+tc.deliverability+`","primary_line":"185 BERRY ST STE 6100"}`)
			res := s.newClient().Verify(context.Background(), domestic())
			s.Equal(tc.outcome, res.Outcome)
			s.Equal(tc.kind, res.Kind)
			s.Equal(200, res.Code)
			s.JSONEq(`{"deliverability":"`+tc.deliverability+`","primary_line":"185 BERRY ST STE 6100"}`, string(res.Data))
		})
	}
}

func (s *ClientSuite) TestVerifiedLinesAreCaptured() {
	s.respond(200, `{
		"deliverability":"deliverable",
		"primary_line":"185 BERRY ST STE 6100",
		"secondary_line":"",
		"components":{"secondary_designator":"STE"}
	}`)
	res := s.newClient().Verify(context.Background(), domestic())
	s.Require().NotNil(res.Verified)
	s.Equal("185 BERRY ST STE 6100", res.Verified.PrimaryLine)
	s.Equal("STE", res.Verified.Designator)
}

func (s *ClientSuite) TestServiceErrorMessage() {
	s.Run("known required-field message", func() {
		s.respond(200, `{"error":{"message":"zip_code must be in a valid zip or zip+4 format"}}`)
		res := s.newClient().Verify(context.Background(), domestic())
		s.Equal(address.OutcomeInvalidInput, res.Outcome)
		s.Equal(address.KindZip, res.Kind)
		s.Equal(CategoryKnownDeliverability, res.Category)
		s.Nil(res.Verified)
	})
	s.Run("unknown message", func() {
		s.respond(200, `{"error":{"message":"rate limit exceeded"}}`)
		res := s.newClient().Verify(context.Background(), domestic())
		s.Equal(address.OutcomeUnknown, res.Outcome)
		s.Equal(address.KindDefault, res.Kind)
	})
}

func (s *ClientSuite) TestUnauthorized() {
	s.respond(401, `{"error":{"message":"Your API key is not valid."}}`)
	res := s.newClient(WithAPIKey("bad")).Verify(context.Background(), domestic())
	s.Equal(address.OutcomeUnauthorized, res.Outcome)
	s.Equal(401, res.Code)
	s.Equal(CategoryUnauthorized, res.Category)
	s.True(res.Outcome.FailsOpen())
}

func (s *ClientSuite) TestFailOpenResponses() {
	cases := []struct {
		name     string
		status   int
		body     string
		category ErrorCategory
	}{
		{"server error", 500, `{"error":"boom"}`, CategoryNetworkUnavailable},
		{"bad request", 422, `{"error":{"message":"x"}}`, CategoryNetworkUnavailable},
		{"empty body", 200, ``, CategoryNetworkUnavailable},
		{"whitespace body", 200, "  \n", CategoryNetworkUnavailable},
		{"malformed json", 200, `{"deliverability":`, CategoryMalformedResponse},
		{"array body", 200, `[1,2]`, CategoryMalformedResponse},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.respond(tc.status, tc.body)
			res := s.newClient().Verify(context.Background(), domestic())
			s.Equal(address.OutcomeServiceUnavailable, res.Outcome)
			s.Equal(tc.category, res.Category)
			s.Equal(200, res.Code)
		})
	}
}

func (s *ClientSuite) TestWrappedEnvelope() {
	s.Run("unwraps a 200 envelope", func() {
		s.respond(200, `{"statusCode":200,"body":{"deliverability":"deliverable_missing_unit"}}`)
		res := s.newClient().Verify(context.Background(), domestic())
		s.Equal(address.OutcomeDeliverableMissingUnit, res.Outcome)
		s.JSONEq(`{"deliverability":"deliverable_missing_unit"}`, string(res.Data))
	})
	s.Run("embedded failure status fails open", func() {
		s.respond(200, `{"statusCode":503,"body":{"deliverability":"undeliverable"}}`)
		res := s.newClient().Verify(context.Background(), domestic())
		s.Equal(address.OutcomeServiceUnavailable, res.Outcome)
	})
}

func (s *ClientSuite) TestTimeoutFailsOpen() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}
	c := s.newClient(WithTimeout(50 * time.Millisecond))

	start := time.Now()
	res := c.Verify(context.Background(), domestic())

	s.Less(time.Since(start), time.Second)
	s.Equal(address.OutcomeServiceUnavailable, res.Outcome)
	s.Equal(CategoryTimeout, res.Category)
}

func (s *ClientSuite) TestTransportFailure() {
	c := New(EndpointsFor("http://127.0.0.1:1"))
	res := c.Verify(context.Background(), domestic())
	s.Equal(address.OutcomeServiceUnavailable, res.Outcome)
	s.Equal(CategoryNetworkUnavailable, res.Category)
}

func (s *ClientSuite) TestInternational() {
	intl := address.Fields{Primary: "10 Downing St", City: "London", Zip: "SW1A 2AA", Country: "United Kingdom"}

	s.Run("short-circuits without a network call", func() {
		res := s.newClient().Verify(context.Background(), intl)
		s.Equal(address.OutcomeDeliverable, res.Outcome)
		s.True(res.International)
		s.JSONEq(`{}`, string(res.Data))
		s.Equal(int32(0), s.hits.Load())
	})

	s.Run("calls the international endpoint when enabled", func() {
		s.respond(200, `{"deliverability":"deliverable_missing_info"}`)
		res := s.newClient(WithInternationalVerification(true)).Verify(context.Background(), intl)
		s.Equal(address.OutcomeDeliverableNeedsImprovement, res.Outcome)
		last, body := s.received()
		s.Require().NotNil(last)
		s.Equal("/v1/intl_verifications", last.URL.Path)

		var payload map[string]string
		s.Require().NoError(json.Unmarshal(body, &payload))
		s.Equal("gb", payload["country"])
		s.Equal("SW1A 2AA", payload["postal_code"])
		s.NotContains(payload, "zip_code")
	})
}

func (s *ClientSuite) TestBreakerSkipsCallsWhileOpen() {
	s.respond(500, `{}`)
	breaker := circuit.New("us_verify", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	c := s.newClient(WithBreaker(breaker))

	c.Verify(context.Background(), domestic())
	c.Verify(context.Background(), domestic())
	s.True(breaker.IsOpen())

	res := c.Verify(context.Background(), domestic())
	s.Equal(address.OutcomeServiceUnavailable, res.Outcome)
	s.Equal(CategoryCircuitOpen, res.Category)
	s.Equal(int32(2), s.hits.Load())
}

func (s *ClientSuite) TestAutocomplete() {
	s.Run("returns suggestions", func() {
		s.respond(200, `{"suggestions":[{"primary_line":"185 BERRY ST","city":"SAN FRANCISCO","state":"CA","zip_code":"94107"}]}`)
		got, err := s.newClient().Autocomplete(context.Background(), AutocompleteRequest{Prefix: "185 Ber", State: "CA"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("185 BERRY ST", got[0].PrimaryLine)
		last, body := s.received()
		s.Equal("/v1/us_autocompletions", last.URL.Path)

		var payload map[string]string
		s.Require().NoError(json.Unmarshal(body, &payload))
		s.Equal("185 Ber", payload["address_prefix"])
		s.NotContains(payload, "city")
	})
	s.Run("rejects an empty prefix", func() {
		_, err := s.newClient().Autocomplete(context.Background(), AutocompleteRequest{Prefix: "  "})
		s.ErrorIs(err, ErrEmptyPrefix)
	})
	s.Run("surfaces categorized errors", func() {
		s.respond(401, `{}`)
		_, err := s.newClient().Autocomplete(context.Background(), AutocompleteRequest{Prefix: "185"})
		s.Require().Error(err)
		s.Equal(CategoryUnauthorized, CategoryOf(err))
		s.False(IsRetryable(err))
	})
}

func TestClassifyIsTotal(t *testing.T) {
	statuses := []int{0, 200, 201, 204, 301, 400, 401, 403, 404, 500, 502, 503}
	bodies := []string{"", "null", "{}", "[]", `"x"`, "{", `{"deliverability":"deliverable"}`, `{"statusCode":"oops"}`}
	valid := make(map[address.Outcome]bool, len(address.AllOutcomes))
	for _, o := range address.AllOutcomes {
		valid[o] = true
	}
	for _, status := range statuses {
		for _, body := range bodies {
			res := classify(status, []byte(body), address.DefaultMessages())
			assert.True(t, valid[res.Outcome], "status %d body %q produced %q", status, body, res.Outcome)
			assert.NotEmpty(t, res.Data)
		}
	}
}

func TestDefaultEndpoints(t *testing.T) {
	prod := DefaultEndpoints("")
	assert.Equal(t, "https://api.lob.com/v1/us_verifications", prod.USVerify)

	staging := DefaultEndpoints("Staging")
	assert.Equal(t, "https://api.lob-staging.com/v1/intl_verifications", staging.IntlVerify)
	assert.Equal(t, "https://api.lob-staging.com/v1/us_autocompletions", staging.Autocomplete)

	merged := prod.Merge(Endpoints{USVerify: "http://localhost:9000/verify"})
	assert.Equal(t, "http://localhost:9000/verify", merged.USVerify)
	assert.Equal(t, prod.IntlVerify, merged.IntlVerify)
}

func TestErrorTaxonomy(t *testing.T) {
	err := &Error{Category: CategoryTimeout, Op: "POST us_verify", Err: context.DeadlineExceeded}
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, CategoryTimeout, CategoryOf(err))
	assert.Contains(t, err.Error(), "timeout")

	assert.False(t, IsRetryable(&Error{Category: CategoryMalformedResponse}))
	assert.Equal(t, CategoryNetworkUnavailable, CategoryOf(io.EOF))
}
