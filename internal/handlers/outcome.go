package handlers

import "fmt"

// OutcomeKind tags the single result of running a degradation ladder.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeUpstreamError
	OutcomeUnconfigured
	OutcomeValidationFailed
	OutcomeSpamSuppressed
	OutcomeUnexpected
	OutcomeEmptyInput
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeUpstreamError:
		return "upstream_error"
	case OutcomeUnconfigured:
		return "unconfigured"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeSpamSuppressed:
		return "spam_suppressed"
	case OutcomeUnexpected:
		return "unexpected"
	case OutcomeEmptyInput:
		return "empty_input"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is what a ladder produces; only the fields for its Kind are set.
// Each handler maps it to a response exactly once.
type Outcome struct {
	Kind OutcomeKind

	Payload string // OutcomeSuccess

	Status int    // OutcomeUpstreamError
	Body   string // OutcomeUpstreamError

	Reason string // OutcomeValidationFailed

	Err error // OutcomeUnexpected
}

func success(payload string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Payload: payload}
}

func upstreamError(status int, body string) Outcome {
	return Outcome{Kind: OutcomeUpstreamError, Status: status, Body: body}
}

func unconfigured() Outcome { return Outcome{Kind: OutcomeUnconfigured} }

func validationFailed(reason string) Outcome {
	return Outcome{Kind: OutcomeValidationFailed, Reason: reason}
}

func spamSuppressed() Outcome { return Outcome{Kind: OutcomeSpamSuppressed} }

func unexpected(err error) Outcome {
	return Outcome{Kind: OutcomeUnexpected, Err: err}
}

func emptyInput() Outcome { return Outcome{Kind: OutcomeEmptyInput} }
