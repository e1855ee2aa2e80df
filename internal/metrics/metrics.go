package metrics

import (
	"encoding/json"
	"sync"
	"time"
)

type histogram struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// Collector aggregates counters, gauges and histograms for the /metrics
// endpoint. It is deliberately small: a JSON export, no scrape protocol.
type Collector struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string]*histogram
	startTime  time.Time
}

func NewCollector() *Collector {
	return &Collector{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string]*histogram),
		startTime:  time.Now(),
	}
}

func (c *Collector) Inc(name string) { c.Add(name, 1) }

func (c *Collector) Add(name string, delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

func (c *Collector) SetGauge(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

func (c *Collector) Observe(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.histograms[name]
	if !ok {
		h = &histogram{Min: value, Max: value}
		c.histograms[name] = h
	}
	h.Count++
	h.Sum += value
	if value < h.Min {
		h.Min = value
	}
	if value > h.Max {
		h.Max = value
	}
	h.Avg = h.Sum / float64(h.Count)
}

// Counter returns the current value of a counter, mostly for tests and the
// performance endpoint.
func (c *Collector) Counter(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

type export struct {
	Counters   map[string]float64    `json:"counters"`
	Gauges     map[string]float64    `json:"gauges"`
	Histograms map[string]*histogram `json:"histograms"`
	System     map[string]float64    `json:"system"`
}

// Export serializes a snapshot of all metrics as JSON.
func (c *Collector) Export() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := export{
		Counters:   make(map[string]float64, len(c.counters)),
		Gauges:     make(map[string]float64, len(c.gauges)),
		Histograms: make(map[string]*histogram, len(c.histograms)),
		System: map[string]float64{
			"uptime_seconds": time.Since(c.startTime).Seconds(),
		},
	}
	for k, v := range c.counters {
		out.Counters[k] = v
	}
	for k, v := range c.gauges {
		out.Gauges[k] = v
	}
	for k, h := range c.histograms {
		cp := *h
		out.Histograms[k] = &cp
	}
	return json.Marshal(out)
}
