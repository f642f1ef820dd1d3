package tracing

// Span attribute keys.
const (
	AttrCommandName  = "govkit.command"
	AttrRepoRoot     = "govkit.repo_root"
	AttrPassed       = "govkit.passed"
	AttrMessageCount = "govkit.message_count"
	AttrRunID        = "govkit.run_id"

	AttrErrorMessage = "error.message"
)

// SpanPrefixCommand prefixes every command span name.
const SpanPrefixCommand = "govkit."

// Event names.
const (
	EventChecksFinished = "checks.finished"
	EventRunRecorded    = "audit.recorded"
)
