package memory

import (
	"runtime/debug"
	"testing"
)

// clearMemoryEnv blanks every variable ConfigureFromEnv reads so tests start
// from a known state regardless of the invoking environment.
func clearMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")
	t.Setenv("MEMORY_RATIO", "")
}

// preserveMemoryLimit restores the process memory limit after the test,
// since ConfigureFromEnv mutates it via debug.SetMemoryLimit.
func preserveMemoryLimit(t *testing.T) {
	t.Helper()
	old := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(old) })
}

func TestConfigureFromEnvUnset(t *testing.T) {
	clearMemoryEnv(t)
	preserveMemoryLimit(t)

	before := debug.SetMemoryLimit(-1)
	result := ConfigureFromEnv()

	if result.Configured {
		t.Error("Expected Configured to be false with no environment set")
	}
	if result.Source != sourceNone {
		t.Errorf("Expected Source to be %q, got %q", sourceNone, result.Source)
	}
	if result.ContainerLimit != 0 {
		t.Errorf("Expected ContainerLimit to be 0, got %d", result.ContainerLimit)
	}
	if result.GoMemLimit != 0 {
		t.Errorf("Expected GoMemLimit to be 0, got %d", result.GoMemLimit)
	}
	if after := debug.SetMemoryLimit(-1); after != before {
		t.Errorf("Expected memory limit to be untouched, got %d (was %d)", after, before)
	}
}

func TestConfigureFromEnvGOMEMLIMITPrecedence(t *testing.T) {
	clearMemoryEnv(t)
	preserveMemoryLimit(t)

	// The runtime applies GOMEMLIMIT at startup; simulate that here since
	// setting the variable mid-process has no effect on the runtime.
	t.Setenv("GOMEMLIMIT", "512MiB")
	t.Setenv("MEMORY_LIMIT", "1073741824")
	debug.SetMemoryLimit(512 << 20)

	result := ConfigureFromEnv()

	if !result.Configured {
		t.Error("Expected Configured to be true when GOMEMLIMIT is set")
	}
	if result.Source != sourceGOMEMLIMIT {
		t.Errorf("Expected Source to be %q, got %q", sourceGOMEMLIMIT, result.Source)
	}
	if result.GoMemLimit != 512<<20 {
		t.Errorf("Expected GoMemLimit to be %d, got %d", int64(512<<20), result.GoMemLimit)
	}
	if got := debug.SetMemoryLimit(-1); got != 512<<20 {
		t.Errorf("Expected MEMORY_LIMIT to be ignored, but limit changed to %d", got)
	}
}

func TestConfigureFromEnvMemoryLimit(t *testing.T) {
	clearMemoryEnv(t)
	preserveMemoryLimit(t)

	t.Setenv("MEMORY_LIMIT", "1073741824")

	result := ConfigureFromEnv()

	if !result.Configured {
		t.Error("Expected Configured to be true with a valid MEMORY_LIMIT")
	}
	if result.Source != sourceMEMORYLIMIT {
		t.Errorf("Expected Source to be %q, got %q", sourceMEMORYLIMIT, result.Source)
	}
	if result.ContainerLimit != 1<<30 {
		t.Errorf("Expected ContainerLimit to be %d, got %d", int64(1<<30), result.ContainerLimit)
	}
	if result.Ratio != DefaultMemoryRatio {
		t.Errorf("Expected Ratio to be %v, got %v", DefaultMemoryRatio, result.Ratio)
	}
	limit := float64(1 << 30)
	want := int64(limit * DefaultMemoryRatio)
	if result.GoMemLimit != want {
		t.Errorf("Expected GoMemLimit to be %d, got %d", want, result.GoMemLimit)
	}
	if got := debug.SetMemoryLimit(-1); got != want {
		t.Errorf("Expected runtime limit to be %d, got %d", want, got)
	}
}

func TestConfigureFromEnvCustomRatio(t *testing.T) {
	clearMemoryEnv(t)
	preserveMemoryLimit(t)

	t.Setenv("MEMORY_LIMIT", "1073741824")
	t.Setenv("MEMORY_RATIO", "0.5")

	result := ConfigureFromEnv()

	if result.Ratio != 0.5 {
		t.Errorf("Expected Ratio to be 0.5, got %v", result.Ratio)
	}
	if result.GoMemLimit != 1<<29 {
		t.Errorf("Expected GoMemLimit to be %d, got %d", int64(1<<29), result.GoMemLimit)
	}
}

func TestConfigureFromEnvInvalidMemoryLimit(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "abc"},
		{"float", "12.5"},
		{"unit suffix", "512Mi"},
		{"zero", "0"},
		{"negative", "-1048576"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearMemoryEnv(t)
			preserveMemoryLimit(t)

			t.Setenv("MEMORY_LIMIT", tc.value)
			before := debug.SetMemoryLimit(-1)

			result := ConfigureFromEnv()

			if result.Configured {
				t.Errorf("Expected Configured to be false for MEMORY_LIMIT=%q", tc.value)
			}
			if result.Source != sourceNone {
				t.Errorf("Expected Source to be %q, got %q", sourceNone, result.Source)
			}
			if after := debug.SetMemoryLimit(-1); after != before {
				t.Errorf("Expected memory limit to be untouched, got %d (was %d)", after, before)
			}
		})
	}
}

func TestConfigureFromEnvInvalidRatio(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-0.5"},
		{"above one", "1.01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearMemoryEnv(t)
			preserveMemoryLimit(t)

			t.Setenv("MEMORY_LIMIT", "1073741824")
			t.Setenv("MEMORY_RATIO", tc.value)

			result := ConfigureFromEnv()

			if !result.Configured {
				t.Error("Expected Configured to be true, a bad ratio falls back to the default")
			}
			if result.Ratio != DefaultMemoryRatio {
				t.Errorf("Expected Ratio to fall back to %v, got %v", DefaultMemoryRatio, result.Ratio)
			}
		})
	}
}

func TestConfigureFromEnvIdempotent(t *testing.T) {
	clearMemoryEnv(t)
	preserveMemoryLimit(t)

	t.Setenv("MEMORY_LIMIT", "2147483648")

	result1 := ConfigureFromEnv()
	result2 := ConfigureFromEnv()

	if result1 != result2 {
		t.Errorf("Expected repeated calls to agree, got %+v then %+v", result1, result2)
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{2684354560, "2.5 GiB"},
		{1 << 40, "1.0 TiB"},
		{1 << 50, "1.0 PiB"},
		{1 << 60, "1.0 EiB"},
	}

	for _, tc := range tests {
		if got := formatBytes(tc.bytes); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func BenchmarkFormatBytes(b *testing.B) {
	for i := 0; i < b.N; i++ {
		formatBytes(5368709120)
	}
}
