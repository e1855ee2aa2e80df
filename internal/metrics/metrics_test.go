package metrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndGauges(t *testing.T) {
	c := NewCollector()
	c.Inc("requests")
	c.Inc("requests")
	c.Add("requests", 3)
	c.SetGauge("queue_depth", 7)

	assert.Equal(t, float64(5), c.Counter("requests"))
	assert.Equal(t, float64(0), c.Counter("unknown"))
}

func TestObserve(t *testing.T) {
	c := NewCollector()
	c.Observe("latency", 2)
	c.Observe("latency", 4)
	c.Observe("latency", 9)

	data, err := c.Export()
	require.NoError(t, err)

	var out struct {
		Histograms map[string]struct {
			Count int     `json:"count"`
			Min   float64 `json:"min"`
			Max   float64 `json:"max"`
			Avg   float64 `json:"avg"`
		} `json:"histograms"`
		System map[string]float64 `json:"system"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	h := out.Histograms["latency"]
	assert.Equal(t, 3, h.Count)
	assert.Equal(t, float64(2), h.Min)
	assert.Equal(t, float64(9), h.Max)
	assert.Equal(t, float64(5), h.Avg)
	assert.GreaterOrEqual(t, out.System["uptime_seconds"], float64(0))
}
