package exec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toMap(env []string) map[string]string {
	result := make(map[string]string)
	for _, e := range env {
		idx := strings.Index(e, "=")
		if idx != -1 {
			result[e[:idx]] = e[idx+1:]
		}
	}
	return result
}

func TestLoadEnvFile(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name:    "simple key-value pairs",
			content: "DISPLAY=:99\nMOZ_HEADLESS=1",
			expected: map[string]string{
				"DISPLAY":      ":99",
				"MOZ_HEADLESS": "1",
			},
		},
		{
			name:    "with comments and empty lines",
			content: "# display for headful runs\nDISPLAY=:99\n\n# done",
			expected: map[string]string{
				"DISPLAY": ":99",
			},
		},
		{
			name:    "double quoted values",
			content: `CHROME_FLAGS="--no-sandbox --disable-gpu"`,
			expected: map[string]string{
				"CHROME_FLAGS": "--no-sandbox --disable-gpu",
			},
		},
		{
			name:    "values with equals sign",
			content: "PROXY=http://host?a=1",
			expected: map[string]string{
				"PROXY": "http://host?a=1",
			},
		},
		{
			name:     "empty file",
			content:  "",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envPath := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(envPath, []byte(tt.content), 0644))

			result, err := LoadEnvFile(envPath)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoadEnvFile_FileNotFound(t *testing.T) {
	_, err := LoadEnvFile("/nonexistent/path/.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/path/.env")
}

func TestApplyEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "probe.env")
	require.NoError(t, os.WriteFile(envPath, []byte("BROWSERPROBE_TEST_VAR=applied\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("BROWSERPROBE_TEST_VAR") })

	vars, err := ApplyEnvFile(envPath)
	require.NoError(t, err)
	assert.Equal(t, "applied", vars["BROWSERPROBE_TEST_VAR"])
	assert.Equal(t, "applied", os.Getenv("BROWSERPROBE_TEST_VAR"))
}

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name     string
		base     []string
		override []string
		expected map[string]string
	}{
		{
			name:     "simple merge",
			base:     []string{"PATH=/usr/bin", "HOME=/root"},
			override: []string{"DISPLAY=:0"},
			expected: map[string]string{
				"PATH":    "/usr/bin",
				"HOME":    "/root",
				"DISPLAY": ":0",
			},
		},
		{
			name:     "override existing",
			base:     []string{"DISPLAY=:0"},
			override: []string{"DISPLAY=:99"},
			expected: map[string]string{
				"DISPLAY": ":99",
			},
		},
		{
			name:     "both empty",
			base:     []string{},
			override: []string{},
			expected: map[string]string{},
		},
		{
			name:     "values with equals",
			base:     []string{"URL=http://host?a=1"},
			override: []string{"URL=http://host?a=2&b=3"},
			expected: map[string]string{
				"URL": "http://host?a=2&b=3",
			},
		},
		{
			name:     "malformed entries dropped",
			base:     []string{"NOEQUALS", "A=1"},
			override: nil,
			expected: map[string]string{
				"A": "1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, toMap(MergeEnv(tt.base, tt.override)))
		})
	}
}

func TestComposeEnv(t *testing.T) {
	base := []string{"PATH=/usr/bin", "DISPLAY=:0"}
	global := map[string]string{"DISPLAY": ":99", "LANG": "C.UTF-8"}
	target := map[string]string{"MOZ_HEADLESS": "1", "LANG": "en_US.UTF-8"}

	result := toMap(ComposeEnv(base, global, target))

	assert.Equal(t, map[string]string{
		"PATH":         "/usr/bin",
		"DISPLAY":      ":99",
		"LANG":         "en_US.UTF-8",
		"MOZ_HEADLESS": "1",
	}, result)
}

func TestComposeEnv_DefaultsToProcessEnv(t *testing.T) {
	t.Setenv("BROWSERPROBE_COMPOSE", "yes")
	result := toMap(ComposeEnv(nil, nil, nil))
	assert.Equal(t, "yes", result["BROWSERPROBE_COMPOSE"])
}

func TestLookupEnv(t *testing.T) {
	tests := []struct {
		name      string
		env       []string
		key       string
		wantValue string
		wantFound bool
	}{
		{
			name:      "present",
			env:       []string{"DISPLAY=:0"},
			key:       "DISPLAY",
			wantValue: ":0",
			wantFound: true,
		},
		{
			name:      "missing",
			env:       []string{"HOME=/root"},
			key:       "DISPLAY",
			wantFound: false,
		},
		{
			name:      "empty counts as unset",
			env:       []string{"DISPLAY="},
			key:       "DISPLAY",
			wantFound: false,
		},
		{
			name:      "prefix does not match",
			env:       []string{"DISPLAYX=:1"},
			key:       "DISPLAY",
			wantFound: false,
		},
		{
			name:      "last value wins",
			env:       []string{"DISPLAY=:0", "DISPLAY=:1"},
			key:       "DISPLAY",
			wantValue: ":1",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := LookupEnv(tt.env, tt.key)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}
