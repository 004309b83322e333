package marketplace

import (
	"strings"
)

// SubmissionError is a failed call: either a non-2xx HTTP status or a
// Failure ack with its error list.
type SubmissionError struct {
	Call       string
	StatusCode int
	Ack        Ack
	Message    string
	Details    []ErrorDetail
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// RawDetails exposes the upstream error list for status display.
func (e *SubmissionError) RawDetails() any {
	if len(e.Details) == 0 {
		return nil
	}
	return e.Details
}

// newAckError joins the long messages with ", ", falling back to the short
// message of each entry and then to fallback.
func newAckError(call, fallback string, errs []ErrorDetail) *SubmissionError {
	var msgs []string
	for _, e := range errs {
		if strings.EqualFold(strings.TrimSpace(e.SeverityCode), "Warning") {
			continue
		}
		switch {
		case strings.TrimSpace(e.LongMessage) != "":
			msgs = append(msgs, strings.TrimSpace(e.LongMessage))
		case strings.TrimSpace(e.ShortMessage) != "":
			msgs = append(msgs, strings.TrimSpace(e.ShortMessage))
		}
	}
	msg := strings.Join(msgs, ", ")
	if msg == "" {
		msg = fallback
	}
	return &SubmissionError{Call: call, Ack: AckFailure, Message: msg, Details: details(errs)}
}

func details(errs []ErrorDetail) []ErrorDetail {
	if len(errs) == 0 {
		return nil
	}
	out := make([]ErrorDetail, len(errs))
	copy(out, errs)
	return out
}
