package errs

import "fmt"

// ConfigurationError signals that required external-service configuration is
// missing. It is detected eagerly, before any network call is attempted.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration missing: %s", e.Missing)
}

// TransportError wraps a network or protocol failure from an external
// collaborator (translator, text analytics, geocoding).
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport failure: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError wraps a local storage failure. Callers must not assume the
// write happened.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError rejects a submission before any side effect occurs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
