package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vcnkl/browserprobe/models"
)

const Version = 1

type Report struct {
	Version    int       `json:"version"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	ExitCode   int       `json:"exit_code"`
	Results    []Entry   `json:"results"`
}

type Entry struct {
	Name       string  `json:"name"`
	Label      string  `json:"label,omitempty"`
	Outcome    string  `json:"outcome"`
	Detail     string  `json:"detail,omitempty"`
	Error      string  `json:"error,omitempty"`
	Stages     []Stage `json:"stages,omitempty"`
	DurationMs int64   `json:"duration_ms"`
}

type Stage struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

func FromResultSet(results *models.ResultSet, startedAt time.Time, duration time.Duration) *Report {
	r := &Report{
		Version:    Version,
		StartedAt:  startedAt.UTC(),
		DurationMs: duration.Milliseconds(),
		ExitCode:   results.ExitCode(),
		Results:    make([]Entry, 0, results.Len()),
	}

	for _, res := range results.All() {
		e := Entry{
			Name:       res.Name,
			Label:      res.Label,
			Outcome:    string(res.Outcome),
			Detail:     res.Detail,
			DurationMs: res.Duration.Milliseconds(),
		}
		if res.Error != nil {
			e.Error = res.Error.Error()
		}
		for _, s := range res.Stages {
			e.Stages = append(e.Stages, Stage{Name: s.Name, Outcome: string(s.Outcome), Detail: s.Detail})
		}
		r.Results = append(r.Results, e)
	}

	return r
}

// ResultSet rebuilds the results for rendering. Errors only keep their
// message.
func (r *Report) ResultSet() *models.ResultSet {
	set := models.NewResultSet()
	for _, e := range r.Results {
		res := &models.TargetResult{
			Name:     e.Name,
			Label:    e.Label,
			Outcome:  models.Outcome(e.Outcome),
			Detail:   e.Detail,
			Duration: time.Duration(e.DurationMs) * time.Millisecond,
		}
		if e.Error != "" {
			res.Error = fmt.Errorf("%s", e.Error)
		}
		for _, s := range e.Stages {
			res.Stages = append(res.Stages, models.StageResult{Name: s.Name, Outcome: models.Outcome(s.Outcome), Detail: s.Detail})
		}
		set.Add(res)
	}
	return set
}

func (r *Report) validate() error {
	if r.Version != Version {
		return fmt.Errorf("unsupported report version %d", r.Version)
	}

	seen := make(map[string]bool, len(r.Results))
	for _, e := range r.Results {
		if e.Name == "" {
			return fmt.Errorf("report entry without a name")
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate report entry %s", e.Name)
		}
		seen[e.Name] = true

		if !knownOutcome(e.Outcome, false) {
			return fmt.Errorf("entry %s has unknown outcome %q", e.Name, e.Outcome)
		}
		for _, s := range e.Stages {
			if !knownOutcome(s.Outcome, true) {
				return fmt.Errorf("stage %s of %s has unknown outcome %q", s.Name, e.Name, s.Outcome)
			}
		}
	}
	return nil
}

func knownOutcome(o string, allowUnset bool) bool {
	switch models.Outcome(o) {
	case models.Passed, models.Failed, models.Skipped:
		return true
	case models.OutcomeUnset:
		return allowUnset
	default:
		return false
	}
}

type Store struct {
	path   string
	report *Report
	mu     sync.RWMutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read report file %s: %w", s.path, err)
	}

	report := &Report{}
	if err = json.Unmarshal(data, report); err != nil {
		return fmt.Errorf("failed to parse report file %s: %w", s.path, err)
	}
	if err = report.validate(); err != nil {
		return fmt.Errorf("invalid report file %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report

	return nil
}

func (s *Store) Get() (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.report, s.report != nil
}

func (s *Store) Set(report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = report
}

func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil {
		return fmt.Errorf("no report to save")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s.report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err = os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file %s: %w", tmpPath, err)
	}

	if err = os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	return nil
}
