package store

// Result is the outcome of one store operation. Failures are reported
// here, never as panics: Error is the user-facing text and Err the
// underlying cause for errors.Is and errors.As.
type Result[T any] struct {
	Success bool
	Items   []T
	Item    *T
	Message string
	Error   string
	Err     error
}

// Failure builds a failed result outside a store, e.g. for validation
// errors caught before any request is made.
func Failure[T any](err error) Result[T] {
	return Result[T]{Error: err.Error(), Err: err}
}

// State is a point-in-time copy of a store's reactive state.
type State[T any] struct {
	Items  []T
	Detail *T
	Busy   bool
	Err    string
	Loaded bool
}
