package cloudformation

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// DefaultPollInterval is the pause between convergence status queries.
const DefaultPollInterval = 1500 * time.Millisecond

// EventObserver receives stack activity events as the poller surfaces them.
type EventObserver interface {
	StackEvent(event Event)
}

// Poller drives an asynchronous stack operation to its terminal state by
// repeated status queries.
//
// Between queries the poller suspends on a timer select, so many provisioning
// requests can wait concurrently without a dedicated OS thread each. Within
// one wait session every activity event is surfaced exactly once, in remote
// timestamp order, even though the remote API returns overlapping unordered
// batches.
type Poller struct {
	client   *Client
	interval time.Duration
	observer EventObserver
}

// NewPoller creates a poller. A zero interval falls back to
// DefaultPollInterval; a nil observer discards events.
func NewPoller(client *Client, interval time.Duration, observer EventObserver) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{client: client, interval: interval, observer: observer}
}

// WaitForCreate polls a stack until creation converges.
//
// While the stack is in progress, newly seen activity events are surfaced to
// the observer before the next poll. A terminal status other than
// CREATE_COMPLETE yields a *ConvergenceError and no output read. On success
// the stack is read exactly once more and its outputs returned, with
// empty-keyed and empty-valued entries excluded.
func (p *Poller) WaitForCreate(ctx context.Context, name string) (map[string]string, error) {
	seen := make(map[string]struct{})
	for {
		stack, err := p.client.DescribeStack(ctx, name)
		if err != nil {
			return nil, err
		}

		switch stack.Status {
		case types.StackStatusCreateInProgress:
			if err := p.surfaceNewEvents(ctx, name, seen); err != nil {
				return nil, err
			}
		case types.StackStatusCreateComplete:
			final, err := p.client.DescribeStack(ctx, name)
			if err != nil {
				return nil, err
			}
			return final.Outputs, nil
		default:
			return nil, &ConvergenceError{StackName: name, Status: stack.Status, Reason: stack.StatusReason}
		}

		if err := p.pause(ctx); err != nil {
			return nil, err
		}
	}
}

// WaitForDelete polls until a stack is fully torn down. A stack that no
// longer resolves counts as deleted; DELETE_FAILED is a convergence failure.
func (p *Poller) WaitForDelete(ctx context.Context, name string) error {
	for {
		stack, err := p.client.DescribeStack(ctx, name)
		if err != nil {
			if errors.Is(err, ErrStackNotFound) {
				return nil
			}
			return err
		}

		switch stack.Status {
		case types.StackStatusDeleteComplete:
			return nil
		case types.StackStatusDeleteFailed:
			return &ConvergenceError{StackName: name, Status: stack.Status, Reason: stack.StatusReason}
		}

		if err := p.pause(ctx); err != nil {
			return err
		}
	}
}

// surfaceNewEvents fetches the current event batch, drops IDs already
// surfaced in this session, and forwards the remainder in ascending
// timestamp order.
func (p *Poller) surfaceNewEvents(ctx context.Context, name string, seen map[string]struct{}) error {
	events, err := p.client.ListEvents(ctx, name)
	if err != nil {
		return err
	}

	fresh := events[:0:0]
	for _, event := range events {
		if _, ok := seen[event.ID]; ok {
			continue
		}
		seen[event.ID] = struct{}{}
		fresh = append(fresh, event)
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Timestamp.Before(fresh[j].Timestamp)
	})

	if p.observer != nil {
		for _, event := range fresh {
			p.observer.StackEvent(event)
		}
	}
	return nil
}

// pause suspends until the next poll or until the request is cancelled.
func (p *Poller) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.interval):
		return nil
	}
}
