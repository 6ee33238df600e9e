// Package saga implements a compensating-transaction orchestrator for
// multi-system provisioning flows.
//
// None of the remote APIs this tool talks to (CloudFormation, the Kubernetes
// API server) offer cross-resource transactions, so "all or nothing" is
// simulated: every forward step registers an undo action for the side effect
// it just committed, and any failure unwinds everything registered so far in
// reverse chronological order.
package saga

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Compensation undoes one committed remote side effect.
//
// Undo closures should capture the resource identity (names derived from the
// provisioning inputs), not live state, so that forward creation and its
// compensation always reference the same resource.
type Compensation struct {
	Name string
	Undo func(ctx context.Context) error
}

// Step is one named unit of forward work. A step that commits a remote side
// effect must register its compensation on the shared Stack before returning
// success; a step may register zero compensations (pure reads) or several
// (nested sub-routines).
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Stack is the ordered collection of pending compensations for one
// provisioning request.
//
// A Stack is owned by exactly one request and passed by reference into every
// nested sub-routine, so compensations from the whole call tree unwind in
// global chronological reverse order. It is not safe for use by concurrent
// requests; each request creates its own.
type Stack struct {
	comps []Compensation
}

// NewStack creates an empty revert stack.
func NewStack() *Stack {
	return &Stack{}
}

// Add appends a compensation. Compensations with a nil Undo are ignored.
func (s *Stack) Add(c Compensation) {
	if c.Undo == nil {
		return
	}
	s.comps = append(s.comps, c)
}

// Len returns the number of registered compensations.
func (s *Stack) Len() int {
	return len(s.comps)
}

// Unwind invokes every registered compensation from most-recently-added to
// least-recently-added. Unwind is best-effort: a failing compensation is
// recorded and the remaining compensations still run. The returned error
// aggregates all compensation failures, or is nil if every one succeeded.
func (s *Stack) Unwind(ctx context.Context) error {
	var failures *multierror.Error
	for i := len(s.comps) - 1; i >= 0; i-- {
		c := s.comps[i]
		if err := c.Undo(ctx); err != nil {
			failures = multierror.Append(failures, fmt.Errorf("compensation %q: %w", c.Name, err))
		}
	}
	return failures.ErrorOrNil()
}

// Run executes steps sequentially. On the first failure (or context
// cancellation observed between steps) it unwinds everything registered so
// far and returns an *AbortError carrying the primary cause and any
// compensation failures. The failed step's own compensation is never
// registered: steps add their compensation only after the paired side effect
// has irrevocably happened.
func (s *Stack) Run(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return s.abort(ctx, step.Name, err)
		}
		if err := step.Run(ctx); err != nil {
			return s.abort(ctx, step.Name, err)
		}
	}
	return nil
}

func (s *Stack) abort(ctx context.Context, step string, cause error) error {
	// Unwind with a fresh context: the request context may already be
	// cancelled, and compensations still have to run.
	unwindCtx := ctx
	if ctx.Err() != nil {
		unwindCtx = context.WithoutCancel(ctx)
	}
	return &AbortError{
		Step:   step,
		Cause:  cause,
		Unwind: s.Unwind(unwindCtx),
	}
}

// AbortError is the single terminal error of a failed provisioning request.
// Cause identifies the step failure that triggered the unwind; Unwind, if
// non-nil, aggregates compensation failures encountered while reverting.
// Unwrap exposes Cause so the primary failure is never masked by partial
// unwind failures.
type AbortError struct {
	Step   string
	Cause  error
	Unwind error
}

func (e *AbortError) Error() string {
	msg := fmt.Sprintf("step %q failed: %v", e.Step, e.Cause)
	if e.Unwind != nil {
		msg += fmt.Sprintf(" (additionally, unwind was incomplete: %v)", e.Unwind)
	}
	return msg
}

func (e *AbortError) Unwrap() error {
	return e.Cause
}
