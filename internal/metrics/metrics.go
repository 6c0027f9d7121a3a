package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metric names tracked by the service
const (
	CounterCartsSpawned      = "carts_spawned"
	CounterOrdersSubmitted   = "orders_submitted"
	CounterBillbackCreated   = "billback_items_created"
	CounterBillbackFailures  = "billback_failures"
	CounterPaymentsRecorded  = "payments_recorded"
	CounterPaymentsDeclined  = "payments_declined"
	CounterLoadsSuperseded   = "loads_superseded"
	TimerCompanyLoad         = "company_load"
)

// TimerMetric captures timing information
type TimerMetric struct {
	Count         int64   `json:"count"`
	TotalTimeMs   int64   `json:"total_time_ms"`
	AverageTimeMs float64 `json:"average_time_ms"`
	MinTimeMs     int64   `json:"min_time_ms"`
	MaxTimeMs     int64   `json:"max_time_ms"`
}

type timerState struct {
	count       int64
	totalTimeMs int64
	minTimeMs   int64
	maxTimeMs   int64
}

// Metrics is the main metrics collector
type Metrics struct {
	mu        sync.RWMutex
	counters  map[string]*int64
	timers    map[string]*timerState
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		counters:  make(map[string]*int64),
		timers:    make(map[string]*timerState),
		startTime: time.Now(),
	}
}

// IncrementCounter increments a counter by 1
func (m *Metrics) IncrementCounter(name string) {
	m.IncrementCounterBy(name, 1)
}

// IncrementCounterBy increments a counter by the specified value
func (m *Metrics) IncrementCounterBy(name string, value int64) {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		// Check again to avoid race conditions
		if counter, exists = m.counters[name]; !exists {
			var c int64
			counter = &c
			m.counters[name] = counter
		}
		m.mu.Unlock()
	}

	atomic.AddInt64(counter, value)
}

// RecordTime records a duration against a timer metric
func (m *Metrics) RecordTime(name string, duration time.Duration) {
	ms := duration.Milliseconds()

	m.mu.Lock()
	timer, exists := m.timers[name]
	if !exists {
		timer = &timerState{minTimeMs: ms, maxTimeMs: ms}
		m.timers[name] = timer
	}

	timer.count++
	timer.totalTimeMs += ms
	if ms < timer.minTimeMs {
		timer.minTimeMs = ms
	}
	if ms > timer.maxTimeMs {
		timer.maxTimeMs = ms
	}
	m.mu.Unlock()
}

// CounterValue returns the current value of a counter
func (m *Metrics) CounterValue(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counter, exists := m.counters[name]
	if !exists {
		return 0
	}
	return atomic.LoadInt64(counter)
}

// Snapshot returns the current state of all metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, counter := range m.counters {
		counters[name] = atomic.LoadInt64(counter)
	}

	timers := make(map[string]TimerMetric, len(m.timers))
	for name, timer := range m.timers {
		metric := TimerMetric{
			Count:       timer.count,
			TotalTimeMs: timer.totalTimeMs,
			MinTimeMs:   timer.minTimeMs,
			MaxTimeMs:   timer.maxTimeMs,
		}
		if timer.count > 0 {
			metric.AverageTimeMs = float64(timer.totalTimeMs) / float64(timer.count)
		}
		timers[name] = metric
	}

	return map[string]interface{}{
		"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
		"counters":       counters,
		"timers":         timers,
	}
}
