package metrics

import (
	"testing"
	"time"
)

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{
			Archives:     100,
			Fingerprints: 400,
			Exclusions:   3,
			MainBytes:    1 << 20,
			WALBytes:     1 << 16,
			SHMBytes:     1 << 12,
		},
	}

	collector := NewCollector(provider, 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}

	if collector.statsProvider != provider {
		t.Error("statsProvider not set correctly")
	}

	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want %v", collector.interval, 5*time.Second)
	}

	if collector.stopChan == nil {
		t.Error("stopChan not initialized")
	}
}

func TestNewCollectorWithNilProvider(t *testing.T) {
	collector := NewCollector(nil, 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}

	// collect must be a no-op, not a panic, without a provider.
	collector.collect()
}

func TestCollectorStartStop(_ *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{Archives: 50},
	}

	collector := NewCollector(provider, 50*time.Millisecond)
	collector.Start()

	// Let it run through at least one tick.
	time.Sleep(120 * time.Millisecond)

	collector.Stop()
}

func TestCollectorCollect(_ *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{
			Archives:     7,
			Fingerprints: 28,
			Exclusions:   1,
		},
	}

	collector := NewCollector(provider, time.Minute)

	// Direct collect should update the gauges without panicking.
	collector.collect()
}
