package models

import "fmt"

// ConfigurationError reports that a job lacks configuration required to run
// a step, e.g. no JIRA site. It always aborts the enclosing step.
type ConfigurationError struct {
	Job    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Job == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (job %q)", e.Reason, e.Job)
}

// ValidationError reports an input that is invalid after variable expansion.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransportError wraps a failure returned by the JIRA site collaborator.
type TransportError struct {
	// Op names the collaborator call that failed (e.g., "get versions")
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
