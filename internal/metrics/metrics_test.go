package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/quill/internal/query"
)

var _ query.Recorder = (*Recorder)(nil)

func TestLookupsAreCountedPerOutcome(t *testing.T) {
	r := NewRecorder()

	r.Lookup("recommended", query.OriginGet, query.OutcomeHit)
	r.Lookup("recommended", query.OriginGet, query.OutcomeHit)
	r.Lookup("recommended", query.OriginPrefetch, query.OutcomeHit)
	r.Lookup("search", query.OriginGet, query.OutcomeMiss)
	r.Lookup("recommended", query.OriginGet, query.OutcomeStale)
	r.Lookup("recommended", query.OriginGet, query.OutcomeCoalesced)
	r.Discarded("search")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.lookups.WithLabelValues("recommended", "get", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lookups.WithLabelValues("recommended", "prefetch", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lookups.WithLabelValues("search", "get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lookups.WithLabelValues("recommended", "get", "stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.discarded.WithLabelValues("search")))
}

func TestFetchDurationsSplitBySuccess(t *testing.T) {
	r := NewRecorder()
	r.FetchFinished("most-liked", 20*time.Millisecond, nil)
	r.FetchFinished("most-liked", time.Second, errors.New("offline"))

	assert.Equal(t, 2, testutil.CollectAndCount(r.fetchDuration))
}

func TestInstrumentedTransportAndHandler(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer api.Close()

	r := NewRecorder()
	client := &http.Client{Transport: r.InstrumentTransport(nil)}
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.apiRequests.WithLabelValues("418", "get")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "quill_api_requests_total")
}
