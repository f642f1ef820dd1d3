// Package check defines the result model shared by multi-step governance
// commands (enforce, doctor, unit validation). Each step produces one Result;
// a Report is the ordered list of results for one command run.
package check

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusWarn Status = "WARN"
	StatusSkip Status = "SKIP"
)

// Result is the outcome of one named check.
type Result struct {
	Title    string
	Status   Status
	Summary  string   // one-line outcome, e.g. "No forbidden tokens found"
	Findings []string // individual violations, in discovery order
}

// Pass builds a passing result.
func Pass(title, summary string) Result {
	return Result{Title: title, Status: StatusPass, Summary: summary}
}

// Fail builds a failing result with its findings.
func Fail(title, summary string, findings []string) Result {
	return Result{Title: title, Status: StatusFail, Summary: summary, Findings: findings}
}

// Warn builds an advisory result. Warnings never fail a report.
func Warn(title, summary string, findings []string) Result {
	return Result{Title: title, Status: StatusWarn, Summary: summary, Findings: findings}
}

// Skip builds a result for a check that could not run. Skipped checks count
// as failed.
func Skip(title, summary string) Result {
	return Result{Title: title, Status: StatusSkip, Summary: summary}
}

// Failing reports whether the result counts against the report.
func (r Result) Failing() bool {
	return r.Status == StatusFail || r.Status == StatusSkip
}

// Report is the ordered set of results for one command run.
type Report struct {
	Title   string
	Results []Result
}

// Add appends a result.
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// FailedCount returns the number of failing results.
func (r *Report) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Failing() {
			n++
		}
	}
	return n
}

// WarningCount returns the number of advisory results.
func (r *Report) WarningCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusWarn {
			n++
		}
	}
	return n
}

// Passed reports whether no check failed.
func (r *Report) Passed() bool {
	return r.FailedCount() == 0
}

// Messages flattens every finding of failing results, in order.
func (r *Report) Messages() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Failing() {
			continue
		}
		if len(res.Findings) == 0 {
			out = append(out, res.Title+": "+res.Summary)
			continue
		}
		out = append(out, res.Findings...)
	}
	return out
}
