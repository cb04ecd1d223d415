package runner

import (
	"time"
)

// TestSuite is one integration case file: a world to start, a
// companion, and a sequence of turns with expectations on the save.
type TestSuite struct {
	Name      string     `json:"name"`
	WorldID   string     `json:"world_id"`
	Companion string     `json:"companion,omitempty"`
	Steps     []TestStep `json:"steps"`
}

// TestStep is one player turn plus the state checks to run after it.
type TestStep struct {
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Expect  Expectation `json:"expect,omitempty"`
}

// Expectation checks the session document after a step. Zero-valued
// fields are skipped. Turn and gold checks are lower bounds because
// model output is non-deterministic.
type Expectation struct {
	Location     string   `json:"location,omitempty"`
	MinTurnCount int      `json:"min_turn_count,omitempty"`
	MinGold      int      `json:"min_gold,omitempty"`
	HasItems     []string `json:"has_items,omitempty"`
	NotVoided    bool     `json:"not_voided,omitempty"`
}

// TestJob pairs a suite with the file it was loaded from.
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// StepResult records the outcome of one step.
type StepResult struct {
	Name     string
	Error    error
	Duration time.Duration
}

// SuiteResult records the outcome of one suite run.
type SuiteResult struct {
	Job      TestJob
	Slot     string
	Results  []StepResult
	Error    error
	Duration time.Duration
}
