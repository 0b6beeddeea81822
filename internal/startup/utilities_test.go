package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue bool
		want         bool
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_BOOL_UNSET",
			defaultValue: true,
			want:         true,
			setEnv:       false,
		},
		{
			name:         "Returns default false when env var not set",
			key:          "TEST_BOOL_UNSET2",
			defaultValue: false,
			want:         false,
			setEnv:       false,
		},
		{
			name:         "Returns true when env var is 'true'",
			key:          "TEST_BOOL_TRUE",
			envValue:     "true",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns false when env var is 'false'",
			key:          "TEST_BOOL_FALSE",
			envValue:     "false",
			defaultValue: true,
			want:         false,
			setEnv:       true,
		},
		{
			name:         "Returns true when env var is '1'",
			key:          "TEST_BOOL_ONE",
			envValue:     "1",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns false when env var is '0'",
			key:          "TEST_BOOL_ZERO",
			envValue:     "0",
			defaultValue: true,
			want:         false,
			setEnv:       true,
		},
		{
			name:         "Returns default for invalid value",
			key:          "TEST_BOOL_INVALID",
			envValue:     "not-a-bool",
			defaultValue: true,
			want:         true,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue int
		want         int
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_INT_UNSET",
			defaultValue: 6,
			want:         6,
			setEnv:       false,
		},
		{
			name:         "Returns parsed value when set",
			key:          "TEST_INT_SET",
			envValue:     "12",
			defaultValue: 6,
			want:         12,
			setEnv:       true,
		},
		{
			name:         "Returns zero when set to zero",
			key:          "TEST_INT_ZERO",
			envValue:     "0",
			defaultValue: 6,
			want:         0,
			setEnv:       true,
		},
		{
			name:         "Returns default for invalid value",
			key:          "TEST_INT_INVALID",
			envValue:     "twelve",
			defaultValue: 6,
			want:         6,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "healthz"},
		{"/api/crawl", "api/crawl"},
		{"/api/crawl/status", "api/crawl"},
		{"/api/duplicates", "api/duplicates"},
		{"/metrics", "metrics"},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := getRouteGroup(tt.path); got != tt.want {
				t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestEnsureDirectory(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "sub", "dir")

		if err := ensureDirectory(dir, "test"); err != nil {
			t.Fatalf("ensureDirectory() error = %v", err)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory was not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("created path is not a directory")
		}
	})

	t.Run("accepts existing directory", func(t *testing.T) {
		dir := t.TempDir()

		if err := ensureDirectory(dir, "test"); err != nil {
			t.Errorf("ensureDirectory() error = %v", err)
		}
	})

	t.Run("rejects file at path", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := ensureDirectory(file, "test"); err == nil {
			t.Error("ensureDirectory() should reject a regular file")
		}
	})
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()

	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess() error = %v", err)
	}

	// The probe file must not be left behind.
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file was left behind")
	}
}

func TestEnabledString(t *testing.T) {
	if got := enabledString(true); got != "ENABLED" {
		t.Errorf("enabledString(true) = %q", got)
	}
	if got := enabledString(false); got != "DISABLED" {
		t.Errorf("enabledString(false) = %q", got)
	}
}

func TestBuildInfoStruct(t *testing.T) {
	info := BuildInfo{
		Version:   "1.2.3",
		Commit:    "abcdef",
		BuildTime: "2025-01-01T00:00:00Z",
		GoVersion: "go1.25",
		OS:        "linux",
		Arch:      "amd64",
	}

	if info.Version != "1.2.3" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.Commit != "abcdef" {
		t.Errorf("Commit = %q", info.Commit)
	}
}
