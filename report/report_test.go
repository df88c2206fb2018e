package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcnkl/browserprobe/models"
)

func resultSet(results ...*models.TargetResult) *models.ResultSet {
	set := models.NewResultSet()
	for _, r := range results {
		set.Add(r)
	}
	return set
}

func TestReporter_Write(t *testing.T) {
	results := resultSet(
		&models.TargetResult{Name: "chrome_webdriver", Label: "Chrome WebDriver", Outcome: models.Passed, Detail: "Chrome WebDriver Test"},
		&models.TargetResult{
			Name:    "firefox_webdriver",
			Label:   "Firefox WebDriver",
			Outcome: models.Passed,
			Detail:  "2 of 3 stages passed",
			Stages: []models.StageResult{
				{Name: "cli_headless", Outcome: models.Passed, Detail: "Mozilla Firefox 127.0"},
				{Name: "webdriver_headless", Outcome: models.Passed},
				{Name: "webdriver_headful", Outcome: models.Skipped, Detail: "no display available"},
			},
		},
		&models.TargetResult{Name: "playwright", Outcome: models.Skipped, Detail: "disabled in config"},
	)

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Write(results))
	out := buf.String()

	for _, want := range []string{
		"TARGET", "RESULT", "DETAIL",
		"chrome_webdriver (Chrome WebDriver)",
		"  cli_headless",
		"  webdriver_headful",
		"no display available",
		"SKIP",
		"Total: 3 | Passed: 2 | Failed: 0 | Skipped: 1",
		MessagePassed,
	} {
		assert.Contains(t, out, want)
	}

	assert.Less(t, strings.Index(out, "chrome_webdriver"), strings.Index(out, "firefox_webdriver"))
	assert.Less(t, strings.Index(out, "firefox_webdriver"), strings.Index(out, "cli_headless"))
	assert.Less(t, strings.Index(out, "cli_headless"), strings.Index(out, "playwright"))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name    string
		results *models.ResultSet
		want    string
	}{
		{
			name: "failure",
			results: resultSet(
				&models.TargetResult{Name: "a", Outcome: models.Passed},
				&models.TargetResult{Name: "b", Outcome: models.Failed},
			),
			want: MessageFailed,
		},
		{
			name: "all skipped",
			results: resultSet(
				&models.TargetResult{Name: "a", Outcome: models.Skipped},
				&models.TargetResult{Name: "b", Outcome: models.Skipped},
			),
			want: MessageSkipped,
		},
		{
			name:    "empty run",
			results: resultSet(),
			want:    MessageSkipped,
		},
		{
			name: "passed with skips",
			results: resultSet(
				&models.TargetResult{Name: "a", Outcome: models.Passed},
				&models.TargetResult{Name: "b", Outcome: models.Skipped},
			),
			want: MessagePassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.results))
		})
	}
}

func TestTotals(t *testing.T) {
	assert.Equal(t,
		"Total: 4 | Passed: 1 | Failed: 2 | Skipped: 1",
		Totals(models.Counts{Total: 4, Passed: 1, Failed: 2, Skipped: 1}),
	)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short \n"))
	assert.Equal(t, "first line", truncate("first line\nsecond line"))

	long := strings.Repeat("x", maxDetail+10)
	got := truncate(long)
	assert.Len(t, []rune(got), maxDetail)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestReporter_WriteTargets(t *testing.T) {
	targets := []models.Target{
		{Name: "chrome_webdriver", Engine: models.EngineChromium, Backend: models.BackendWebDriver, Enabled: true, Launch: models.LaunchConfig{Headless: true}},
		{Name: "firefox_webdriver", Engine: models.EngineFirefox, Backend: models.BackendWebDriver, Enabled: true, Progressive: true},
		{Name: "playwright", Engine: models.EngineChromium, Backend: models.BackendPlaywright, DisabledReason: "disabled in config"},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf).WriteTargets(targets))
	out := buf.String()

	for _, want := range []string{"chrome_webdriver", "headless", "progressive", "playwright", "disabled: disabled in config"} {
		assert.Contains(t, out, want)
	}
}
