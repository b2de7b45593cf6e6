package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avelements/internal/events"
	"avelements/internal/events/store/memory"
	"avelements/pkg/platform/middleware/admin"
	"avelements/pkg/platform/middleware/request"
	"avelements/pkg/testutil"
)

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "avelements_router_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	store := memory.New()
	require.NoError(t, store.Append(context.Background(), events.NewEvent(events.Error, events.Payload{Form: "checkout", Code: 200})))
	require.NoError(t, store.Append(context.Background(), events.NewEvent(events.Alert, events.Payload{Form: "checkout"})))

	healthy := true
	router := NewRouter(RouterConfig{
		Admin:      NewAdminHandler(store, slog.New(slog.DiscardHandler)),
		AdminToken: "s3cret",
		Gatherer:   reg,
		Health: map[string]HealthChecker{
			"redis": func(*http.Request) error {
				if healthy {
					return nil
				}
				return errors.New("connection refused")
			},
		},
	})

	testutil.Given(t, "a running router", func(t *testing.T) {
		testutil.When(t, "health is checked", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
			testutil.Then(t, "it reports every dependency", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.JSONEq(t, `{"status":"ok","redis":"ok"}`, rr.Body.String())
				assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
			})
		})

		testutil.When(t, "a dependency is down", func(t *testing.T) {
			healthy = false
			defer func() { healthy = true }()
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
			testutil.Then(t, "health degrades", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
				testutil.AssertJSONContains(t, rr, "redis", "connection refused")
			})
		})

		testutil.When(t, "metrics are scraped", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
			testutil.Then(t, "the registry is exposed", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.True(t, strings.Contains(rr.Body.String(), "avelements_router_test_total 1"))
			})
		})

		testutil.When(t, "an operator lists events", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/admin/forms/checkout/events?name="+events.Error)
			req.Header.Set(admin.HeaderAdminToken, "s3cret")
			rr := testutil.DoRequest(router, req)
			testutil.Then(t, "the filtered events are returned", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				got := testutil.UnmarshalResponse[EventListResponse](t, rr)
				require.Len(t, got.Events, 1)
				assert.Equal(t, events.Error, got.Events[0].Name)
			})
		})

		testutil.When(t, "the admin token is missing", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/forms/checkout/events"))
			testutil.Then(t, "the request is rejected", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
			})
		})
	})
}
