package runner

import "fmt"

// OperationError is the only error kind the runner returns. It names the step
// that failed and wraps the cause, whether that was the connection, the query
// or decoding the reply.
type OperationError struct {
	Step string
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
