package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.Started(5)
	m.Guess(5, "accepted")
	m.Guess(5, "accepted")
	m.Guess(6, "not_in_dictionary")
	m.Finished(5, true)
	m.WSClients.Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GamesStarted.WithLabelValues("5")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Guesses.WithLabelValues("5", "accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Guesses.WithLabelValues("6", "not_in_dictionary")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GamesFinished.WithLabelValues("5", "won")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kelime_ws_clients 3")
	assert.Contains(t, rec.Body.String(), `kelime_guesses_total{mode="5",outcome="accepted"} 2`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.Started(7)
	assert.Zero(t, testutil.ToFloat64(b.GamesStarted.WithLabelValues("7")))
}
