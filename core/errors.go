package core

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotConnected = errors.New("session is not connected")
	ErrNoIdentityScope     = errors.New("identity context is not active")
)

// ArgumentError is returned when a required input is missing.
type ArgumentError struct {
	Field   string
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("missing required argument: %s", e.Field)
}

// DriverRegistrationError is returned when no adapter is registered under the requested name.
type DriverRegistrationError struct {
	Driver string
	Err    error
}

func (e *DriverRegistrationError) Error() string {
	return fmt.Sprintf("driver %q is not available: %s", e.Driver, e.Err)
}

func (e *DriverRegistrationError) Unwrap() error {
	return e.Err
}

// AuthenticationError wraps a failed Kerberos login.
type AuthenticationError struct {
	Principal string
	Err       error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %q: %s", e.Principal, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ConnectionError wraps a failure to establish a session.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %q failed: %s", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatementError carries the statement that failed to execute.
type StatementError struct {
	Statement Statement
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %q failed: %s", e.Statement.Text, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
