package performance

import (
	"sort"
	"sync"
	"time"
)

// Metric names recorded by the log view.
const (
	MetricLayoutPass = "layout_pass"
	MetricRender     = "render"
	MetricFilter     = "filter"
)

const defaultMaxSamples = 100

// Monitor tracks timing metrics
type Monitor struct {
	metrics map[string]*Metric
	mutex   sync.RWMutex
}

// Metric represents a timing metric
type Metric struct {
	Name        string
	Count       int64
	TotalTime   time.Duration
	MinTime     time.Duration
	MaxTime     time.Duration
	LastTime    time.Duration
	LastUpdated time.Time
	Samples     []time.Duration
	MaxSamples  int
}

// NewMonitor creates a new monitor
func NewMonitor() *Monitor {
	return &Monitor{
		metrics: make(map[string]*Metric),
	}
}

// StartTimer starts timing an operation; call the returned func when it ends
func (m *Monitor) StartTimer(name string) func() {
	start := time.Now()
	return func() {
		m.RecordDuration(name, time.Since(start))
	}
}

// RecordDuration records a duration for a metric
func (m *Monitor) RecordDuration(name string, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	metric, exists := m.metrics[name]
	if !exists {
		metric = &Metric{
			Name:       name,
			MinTime:    duration,
			MaxTime:    duration,
			MaxSamples: defaultMaxSamples,
			Samples:    make([]time.Duration, 0, defaultMaxSamples),
		}
		m.metrics[name] = metric
	}

	metric.Count++
	metric.TotalTime += duration
	metric.LastTime = duration
	metric.LastUpdated = time.Now()
	metric.MinTime = min(metric.MinTime, duration)
	metric.MaxTime = max(metric.MaxTime, duration)

	if len(metric.Samples) >= metric.MaxSamples {
		copy(metric.Samples, metric.Samples[1:])
		metric.Samples = metric.Samples[:len(metric.Samples)-1]
	}
	metric.Samples = append(metric.Samples, duration)
}

// GetMetric returns a copy of a metric by name, or nil
func (m *Monitor) GetMetric(name string) *Metric {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	metric, exists := m.metrics[name]
	if !exists {
		return nil
	}
	return metric.clone()
}

func (metric *Metric) clone() *Metric {
	c := *metric
	c.Samples = append([]time.Duration(nil), metric.Samples...)
	return &c
}

// AverageTime returns the average time for a metric
func (metric *Metric) AverageTime() time.Duration {
	if metric.Count == 0 {
		return 0
	}
	return metric.TotalTime / time.Duration(metric.Count)
}

// RecentAverageTime returns the average of the last sampleCount samples
func (metric *Metric) RecentAverageTime(sampleCount int) time.Duration {
	if len(metric.Samples) == 0 || sampleCount <= 0 {
		return 0
	}

	start := max(len(metric.Samples)-sampleCount, 0)
	var total time.Duration
	for _, s := range metric.Samples[start:] {
		total += s
	}
	return total / time.Duration(len(metric.Samples)-start)
}

// Reset clears a metric
func (m *Monitor) Reset(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.metrics, name)
}

// Summary is a flattened view of one metric
type Summary struct {
	Name      string
	Count     int64
	Average   time.Duration
	RecentAvg time.Duration
	Min       time.Duration
	Max       time.Duration
	Last      time.Duration
}

// Summaries returns one summary per metric sorted by name
func (m *Monitor) Summaries() []Summary {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]Summary, 0, len(m.metrics))
	for _, metric := range m.metrics {
		out = append(out, Summary{
			Name:      metric.Name,
			Count:     metric.Count,
			Average:   metric.AverageTime(),
			RecentAvg: metric.RecentAverageTime(10),
			Min:       metric.MinTime,
			Max:       metric.MaxTime,
			Last:      metric.LastTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
