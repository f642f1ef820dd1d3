package unit

import "fmt"

// ValidationReport accumulates one message per detected inconsistency.
// The zero value is an empty, passing report.
type ValidationReport struct {
	messages []string
}

// Addf appends a formatted message.
func (r *ValidationReport) Addf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

// Extend appends messages in order.
func (r *ValidationReport) Extend(msgs ...string) {
	r.messages = append(r.messages, msgs...)
}

// Messages returns a copy of the collected messages in insertion order.
func (r *ValidationReport) Messages() []string {
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// Len returns the number of collected messages.
func (r *ValidationReport) Len() int {
	return len(r.messages)
}

// Passed reports whether no inconsistency was recorded.
func (r *ValidationReport) Passed() bool {
	return len(r.messages) == 0
}
