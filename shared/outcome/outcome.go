// Package outcome models the result of a call to a dependency that is allowed to degrade.
// An Outcome is either Ok(value) or Degraded(reason); callers that must always answer
// with 200 branch on IsDegraded instead of propagating an error.
package outcome

type Outcome[T any] struct {
	value    T
	reason   string
	degraded bool
}

func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Degraded carries a fallback value alongside the reason the dependency failed.
func Degraded[T any](fallback T, reason string) Outcome[T] {
	return Outcome[T]{value: fallback, reason: reason, degraded: true}
}

func (o Outcome[T]) Value() T { return o.value }

func (o Outcome[T]) IsDegraded() bool { return o.degraded }

// Reason is empty for Ok outcomes.
func (o Outcome[T]) Reason() string { return o.reason }
