package checks

import (
	"errors"
	"time"
)

// ErrSelfTestFailed is returned when any registered check failed.
var ErrSelfTestFailed = errors.New("Self-test failed")

const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// CheckResult is the verdict of one check together with both of its
// messages. Results are values; the checklist never mutates them.
type CheckResult struct {
	ID          string `json:"check_id"`
	Passed      bool   `json:"passed"`
	PassMessage string `json:"pass_message"`
	FailMessage string `json:"fail_message"`
}

// Status is "pass" or "fail".
func (r CheckResult) Status() string {
	if r.Passed {
		return StatusPass
	}
	return StatusFail
}

// Message returns the message matching the verdict.
func (r CheckResult) Message() string {
	if r.Passed {
		return r.PassMessage
	}
	return r.FailMessage
}

// Line renders the console line for the result, e.g. "PASS: Found index.html".
func (r CheckResult) Line() string {
	if r.Passed {
		return "PASS: " + r.PassMessage
	}
	return "FAIL: " + r.FailMessage
}

// Checklist is an append-only, ordered sequence of check results. Conditions
// are evaluated by the caller before registration.
type Checklist struct {
	results []CheckResult
}

// Check records a verdict. Registration order is reporting order.
func (c *Checklist) Check(id string, condition bool, passMsg, failMsg string) {
	c.results = append(c.results, CheckResult{
		ID:          id,
		Passed:      condition,
		PassMessage: passMsg,
		FailMessage: failMsg,
	})
}

// Results returns a copy of the registered results.
func (c *Checklist) Results() []CheckResult {
	out := make([]CheckResult, len(c.results))
	copy(out, c.results)
	return out
}

// Passed is the logical AND of every registered verdict.
func (c *Checklist) Passed() bool {
	for _, r := range c.results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failures returns the fail messages of failed checks in registration order.
func (c *Checklist) Failures() []string {
	var failed []string
	for _, r := range c.results {
		if !r.Passed {
			failed = append(failed, r.FailMessage)
		}
	}
	return failed
}

// Report is the complete outcome of one self-test run.
type Report struct {
	Timestamp    time.Time     `json:"timestamp"`
	Root         string        `json:"root"`
	EntryPath    string        `json:"entry_path,omitempty"`
	MainScript   string        `json:"main_script,omitempty"`
	Passed       bool          `json:"passed"`
	TotalChecks  int           `json:"total_checks"`
	PassedChecks int           `json:"passed_checks"`
	FailedChecks int           `json:"failed_checks"`
	Results      []CheckResult `json:"results"`
	FailMessages []string      `json:"failures,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// NewReport summarizes a checklist. The verdict and failure list are the
// checklist's own.
func NewReport(root string, checklist *Checklist) *Report {
	results := checklist.Results()
	failures := checklist.Failures()
	return &Report{
		Timestamp:    time.Now().UTC(),
		Root:         root,
		Passed:       checklist.Passed(),
		TotalChecks:  len(results),
		PassedChecks: len(results) - len(failures),
		FailedChecks: len(failures),
		Results:      results,
		FailMessages: failures,
	}
}

// IsReportPassing reports whether every check passed.
func (r *Report) IsReportPassing() bool {
	return r.Passed
}

// Failures returns the fail messages in checklist order.
func (r *Report) Failures() []string {
	return r.FailMessages
}
