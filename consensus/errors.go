package consensus

import (
	"errors"
	"fmt"
)

// RuleError is a consensus rejection. RejectCode is the stable string
// relayed to peers; DoS is the misbehavior score charged to the sender
// (10 for structural failures, 100 for substantive ones).
type RuleError struct {
	RejectCode  string
	DoS         int
	Description string
}

func (e RuleError) Error() string {
	if e.Description == "" {
		return e.RejectCode
	}
	return fmt.Sprintf("%s: %s", e.RejectCode, e.Description)
}

func txRuleError(dos int, code, desc string) RuleError {
	return RuleError{RejectCode: code, DoS: dos, Description: desc}
}

// RejectCode extracts the reject code from a validation error, or the
// empty string if err is not a rule error.
func RejectCode(err error) string {
	var re RuleError
	if errors.As(err, &re) {
		return re.RejectCode
	}
	return ""
}

// IsRuleError reports whether err is a consensus rejection rather than a
// parse failure or an internal invariant violation.
func IsRuleError(err error) bool {
	var re RuleError
	return errors.As(err, &re)
}

// ParseError is a malformed-input failure raised during deserialization.
// It fails the whole transaction; no partial state is produced.
type ParseError struct {
	Description string
}

func (e ParseError) Error() string {
	return "parse: " + e.Description
}

func parseError(format string, args ...interface{}) ParseError {
	return ParseError{Description: fmt.Sprintf(format, args...)}
}

// AssertError indicates a violated internal invariant: the caller handed
// the engine state it promised not to (for example an unresolvable
// prevout after HaveInputs reported true).
type AssertError string

func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}
