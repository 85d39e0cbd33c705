package logging

import "sync"

// Metrics is a process-local counter/gauge table used for lightweight
// telemetry. Keys are free-form; readers take a copy.
type Metrics struct {
	mu     sync.Mutex
	values map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]uint64)}
}

func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] += delta
}

func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] = value
}

// Snapshot copies the current values for the diagnostics endpoint.
func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		copied[k] = v
	}
	return copied
}
