// Package errors gives every devicectl failure a stable ErrorCode. Packages
// declare their own codes (devicestate_*, metrics_*, telemetry_*, ...) in an
// errors.go file and build values through a Factory.
package errors

// ErrorCode is the machine-readable name of a failure. It is what logs
// carry in the error_code field and what HasCode matches.
type ErrorCode string

// Error is a coded error. Data carries structured context, for example the
// broker address of a failed MQTT connect.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	// Unwrap returns the wrapped cause, if any.
	Unwrap() error
}

type Factory interface {
	New(code ErrorCode) Error
	// Wrap keeps err reachable through errors.Is and errors.As.
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
