package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsAndSnapshots(t *testing.T) {
	c := Get()
	before := c.Snapshot()["tick"].(map[string]interface{})["count"].(int64)

	c.RecordTick(3 * time.Millisecond)
	c.RecordTick(7 * time.Millisecond)
	c.RecordEventWrite(time.Millisecond, nil)
	c.RecordThought(true, 0, 0, 0)

	snap := c.Snapshot()
	tick := snap["tick"].(map[string]interface{})
	assert.Equal(t, before+2, tick["count"].(int64))
	assert.GreaterOrEqual(t, tick["max_latency_ms"].(float64), 7.0)

	narrative := snap["narrative"].(map[string]interface{})
	assert.GreaterOrEqual(t, narrative["fallbacks"].(int64), int64(1))
}

func TestHandlersRespond(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rec.Body.String(), "uptime_seconds")

	rec = httptest.NewRecorder()
	PrometheusHandler()(rec, httptest.NewRequest("GET", "/metrics/prometheus", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "cablerun_tick_count")
}
