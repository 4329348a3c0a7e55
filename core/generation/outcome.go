// Package generation turns course material into lesson content, quizzes and feedback using AI providers.
package generation

// Outcome is the result of one generation call: a Success or a Failure, never both.
type Outcome[T any] interface {
	// Get returns the payload and true on success; the zero value and false on failure.
	Get() (T, bool)
	isOutcome()
}

type Success[T any] struct {
	Value T
}

type Failure[T any] struct {
	Reason string
}

func (s Success[T]) Get() (T, bool) { return s.Value, true }
func (Success[T]) isOutcome()       {}

func (Failure[T]) Get() (T, bool) {
	var zero T
	return zero, false
}
func (Failure[T]) isOutcome() {}

func succeed[T any](v T) Outcome[T] { return Success[T]{Value: v} }

func fail[T any](reason string) Outcome[T] { return Failure[T]{Reason: reason} }

// FailureReason returns the failure description of o, or "" on success.
func FailureReason[T any](o Outcome[T]) string {
	if f, ok := o.(Failure[T]); ok {
		return f.Reason
	}
	return ""
}
