// Package report renders probe results as a summary table.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vcnkl/browserprobe/models"
)

const (
	MessageFailed  = "one or more probes failed"
	MessageSkipped = "all probes were skipped"
	MessagePassed  = "all executed probes passed"

	maxDetail = 72
)

var (
	green = lipgloss.Color("#A8E6CF")
	red   = lipgloss.Color("#FF6B6B")
	gray  = lipgloss.Color("#6B7280")
)

type Reporter struct {
	out      io.Writer
	renderer *lipgloss.Renderer
}

func New(out io.Writer) *Reporter {
	return &Reporter{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
	}
}

// Write prints the table, the totals line and the final message.
func (r *Reporter) Write(results *models.ResultSet) error {
	c := results.Counts()

	_, err := fmt.Fprintf(r.out, "%s\n%s\n%s\n",
		r.Table(results),
		Totals(c),
		r.message(results),
	)
	return err
}

func (r *Reporter) Table(results *models.ResultSet) string {
	var outcomes []models.Outcome

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.renderer.NewStyle().Foreground(gray)).
		Headers("TARGET", "RESULT", "DETAIL")

	for _, res := range results.All() {
		label := res.Name
		if res.Label != "" && res.Label != res.Name {
			label = fmt.Sprintf("%s (%s)", res.Name, res.Label)
		}
		t.Row(label, res.Outcome.String(), truncate(res.Detail))
		outcomes = append(outcomes, res.Outcome)

		for _, s := range res.Stages {
			t.Row("  "+s.Name, s.Outcome.String(), truncate(s.Detail))
			outcomes = append(outcomes, s.Outcome)
		}
	}

	base := r.renderer.NewStyle().Padding(0, 1)
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return base.Bold(true)
		}
		if col != 1 || row < 0 || row >= len(outcomes) {
			return base
		}
		return r.outcomeStyle(base, outcomes[row])
	})

	return t.String()
}

func (r *Reporter) outcomeStyle(base lipgloss.Style, o models.Outcome) lipgloss.Style {
	switch o {
	case models.Passed:
		return base.Foreground(green).Bold(true)
	case models.Failed:
		return base.Foreground(red).Bold(true)
	default:
		return base.Foreground(gray)
	}
}

func (r *Reporter) message(results *models.ResultSet) string {
	msg := Message(results)
	if results.ExitCode() != 0 {
		return r.renderer.NewStyle().Foreground(red).Render(msg)
	}
	return r.renderer.NewStyle().Foreground(green).Render(msg)
}

// WriteTargets prints the resolved target catalogue.
func (r *Reporter) WriteTargets(targets []models.Target) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.renderer.NewStyle().Foreground(gray)).
		Headers("TARGET", "ENGINE", "BACKEND", "MODE", "STATUS")

	for _, tgt := range targets {
		mode := "headful"
		switch {
		case tgt.Progressive:
			mode = "progressive"
		case tgt.Launch.Headless:
			mode = "headless"
		}

		status := "enabled"
		if !tgt.Enabled {
			status = "disabled: " + tgt.DisabledReason
		}

		t.Row(tgt.Name, string(tgt.Engine), string(tgt.Backend), mode, status)
	}

	base := r.renderer.NewStyle().Padding(0, 1)
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return base.Bold(true)
		}
		return base
	})

	_, err := fmt.Fprintln(r.out, t.String())
	return err
}

func Totals(c models.Counts) string {
	return fmt.Sprintf("Total: %d | Passed: %d | Failed: %d | Skipped: %d", c.Total, c.Passed, c.Failed, c.Skipped)
}

func Message(results *models.ResultSet) string {
	c := results.Counts()
	switch {
	case c.Failed > 0:
		return MessageFailed
	case c.Passed == 0:
		return MessageSkipped
	default:
		return MessagePassed
	}
}

func truncate(detail string) string {
	detail, _, _ = strings.Cut(strings.TrimSpace(detail), "\n")
	runes := []rune(detail)
	if len(runes) <= maxDetail {
		return detail
	}
	return string(runes[:maxDetail-3]) + "..."
}
