package command

import "fmt"

// Status indicates the outcome of a command.
type Status uint8

const (
	// StatusOK indicates successful execution.
	StatusOK Status = iota
	// StatusNoOp indicates the command ran but changed nothing.
	StatusNoOp
	// StatusRejected indicates the guard refused to run the command.
	StatusRejected
	// StatusError indicates the transaction failed and was rolled back.
	StatusError
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusRejected:
		return "rejected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result represents the outcome of executing a command.
type Result struct {
	// Status indicates the result status.
	Status Status

	// Error contains any error that occurred.
	Error error

	// Message is an optional short reason string for display.
	Message string

	// Data holds command-specific return data, e.g. the IDs of clips a
	// split produced.
	Data map[string]interface{}
}

// IsOK returns true if the result indicates success.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError returns true if the result indicates a failed transaction.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Success creates a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// SuccessWithMessage creates a successful result with a message.
func SuccessWithMessage(msg string) Result {
	return Result{Status: StatusOK, Message: msg}
}

// SuccessWithData creates a successful result with data.
func SuccessWithData(key string, value interface{}) Result {
	return Result{
		Status: StatusOK,
		Data:   map[string]interface{}{key: value},
	}
}

// NoOp creates a no-operation result.
func NoOp(msg string) Result {
	return Result{Status: StatusNoOp, Message: msg}
}

// Rejected creates a guard-rejection result.
func Rejected(err error, msg string) Result {
	return Result{Status: StatusRejected, Error: err, Message: msg}
}

// Error creates an error result.
func Error(err error) Result {
	return Result{Status: StatusError, Error: err, Message: err.Error()}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...interface{}) Result {
	return Error(fmt.Errorf(format, args...))
}

// WithMessage returns a copy of the result with the specified message.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}

// WithData returns a copy of the result with data added.
func (r Result) WithData(key string, value interface{}) Result {
	if r.Data == nil {
		r.Data = make(map[string]interface{})
	}
	r.Data[key] = value
	return r
}

// GetData retrieves a value from the result data.
func (r Result) GetData(key string) (interface{}, bool) {
	if r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[key]
	return v, ok
}

// GetDataString retrieves a string value from the result data.
func (r Result) GetDataString(key string) string {
	if v, ok := r.GetData(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetDataInt retrieves an int value from the result data.
func (r Result) GetDataInt(key string) int {
	if v, ok := r.GetData(key); ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}
