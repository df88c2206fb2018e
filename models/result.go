package models

import "time"

type Outcome string

const (
	// OutcomeUnset marks a progressive sub-stage that was never attempted.
	OutcomeUnset Outcome = ""
	Passed       Outcome = "pass"
	Failed       Outcome = "fail"
	Skipped      Outcome = "skip"
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "PASS"
	case Failed:
		return "FAIL"
	case Skipped:
		return "SKIP"
	default:
		return "-"
	}
}

type StageResult struct {
	Name    string
	Outcome Outcome
	Detail  string
}

type TargetResult struct {
	Name     string
	Label    string
	Outcome  Outcome
	Detail   string
	Error    error
	Stages   []StageResult
	Duration time.Duration
}

func (r *TargetResult) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

type Counts struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ResultSet keeps target results in insertion order. It is populated once
// by the runner and only read afterwards.
type ResultSet struct {
	order   []string
	results map[string]*TargetResult
}

func NewResultSet() *ResultSet {
	return &ResultSet{
		results: make(map[string]*TargetResult),
	}
}

func (s *ResultSet) Add(r *TargetResult) {
	if _, ok := s.results[r.Name]; !ok {
		s.order = append(s.order, r.Name)
	}
	s.results[r.Name] = r
}

func (s *ResultSet) Get(name string) (*TargetResult, bool) {
	r, ok := s.results[name]
	return r, ok
}

func (s *ResultSet) All() []*TargetResult {
	all := make([]*TargetResult, 0, len(s.order))
	for _, name := range s.order {
		all = append(all, s.results[name])
	}
	return all
}

func (s *ResultSet) Len() int {
	return len(s.order)
}

func (s *ResultSet) Counts() Counts {
	c := Counts{Total: len(s.order)}
	for _, r := range s.results {
		switch r.Outcome {
		case Passed:
			c.Passed++
		case Failed:
			c.Failed++
		default:
			c.Skipped++
		}
	}
	return c
}

// ExitCode is 1 when any target failed or when nothing passed at all.
func (s *ResultSet) ExitCode() int {
	c := s.Counts()
	if c.Failed > 0 || c.Passed == 0 {
		return 1
	}
	return 0
}
