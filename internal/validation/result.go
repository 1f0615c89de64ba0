// Package validation accumulates rule violations for a single service
// invocation. A Result is created per call and never shared between
// goroutines or call paths.
package validation

import "github.com/KennyMack/jobs/internal/domain"

type State int

const (
	Undefined State = iota
	Invalid
	Valid
)

// Result is the tri-state outcome of a validation pass. It starts Undefined,
// turns Invalid as soon as any error is recorded, and only reaches Valid
// through AddSuccess or Finalize.
type Result struct {
	state    State
	messages []string
}

func NewResult() *Result {
	return &Result{}
}

// Reset clears all messages and returns the state to Undefined.
func (r *Result) Reset() {
	r.state = Undefined
	r.messages = r.messages[:0]
}

// AddError records a violation. Invalid is terminal: no later success can
// clear it.
func (r *Result) AddError(msg string) {
	r.messages = append(r.messages, msg)
	r.state = Invalid
}

// AddSuccess records an informational message and advances the state to
// Valid unless an error was already recorded.
func (r *Result) AddSuccess(msg string) {
	r.messages = append(r.messages, msg)
	if r.state != Invalid {
		r.state = Valid
	}
}

// Finalize settles the outcome: a result with no recorded errors is promoted
// to Valid. Returns true iff the final state is Valid.
func (r *Result) Finalize() bool {
	if r.state != Invalid {
		r.state = Valid
	}
	return r.state == Valid
}

func (r *Result) State() State {
	return r.state
}

func (r *Result) Messages() []string {
	return r.messages
}

// Err converts an Invalid result into a *domain.ValidationError holding a
// copy of the accumulated messages. Any other state yields nil.
func (r *Result) Err() error {
	if r.state != Invalid {
		return nil
	}
	msgs := make([]string, len(r.messages))
	copy(msgs, r.messages)
	return &domain.ValidationError{Messages: msgs}
}
