package stats

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	assert.NotNil(t, su, "expected StatsUpdater to be non-nil")
	assert.NotNil(t, su.updateChan, "expected updateChan to be initialized")
	handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: "/debug/vars"}, Method: http.MethodGet})
	assert.NotNil(t, handler, "expected handler for /debug/vars to be set")
	assert.Equal(t, "GET /debug/vars", pattern, "expected handler to be registered for GET method on /debug/vars")
}

func TestGet(t *testing.T) {
	su := NewStatsUpdater(http.NewServeMux())
	su.RegisterMetric(OnlineUsers)
	assert.Equal(t, int64(0), su.Get(OnlineUsers), "expected fresh metric to be zero")

	su.Run()
	defer su.Stop()

	su.Incr(OnlineUsers)
	assert.Eventually(t, func() bool {
		return su.Get(OnlineUsers) == 1
	}, 1e9, 1e6, "expected metric to be incremented")

	assert.Equal(t, int64(0), su.Get("missing"), "expected unknown metric to read as zero")
}
