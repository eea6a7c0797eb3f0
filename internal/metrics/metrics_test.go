package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/peerhub/internal/model"
)

func TestObserveToggle(t *testing.T) {
	m := New()

	m.ObserveToggle(model.ToggleResult{Relation: model.RelationLike, Active: true, Count: 1})
	m.ObserveToggle(model.ToggleResult{Relation: model.RelationLike, Active: true, Count: 2})
	m.ObserveToggle(model.ToggleResult{Relation: model.RelationLike, Active: false, Count: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toggles.WithLabelValues("likes", "added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toggles.WithLabelValues("likes", "removed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.toggles.WithLabelValues("bookmarks", "added")))
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/v1/project/get/{id}", http.StatusOK, 20*time.Millisecond)

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/api/v1/project/get/{id}", "200"))
	assert.Equal(t, 1.0, got)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.ObserveToggle(model.ToggleResult{Relation: model.RelationFavorite})
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveToggle(model.ToggleResult{Relation: model.RelationBookmark, Active: true})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `peerhub_relation_toggles_total{relation="bookmarks",state="added"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
