// Package cloudformation wraps the AWS CloudFormation API for namespace
// stack provisioning: stack creation, resolution, event listing, deletion,
// and convergence polling.
package cloudformation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// API is the subset of the CloudFormation service client this package calls.
// Tests substitute a mock; production code passes *cloudformation.Client.
type API interface {
	CreateStack(ctx context.Context, params *cfn.CreateStackInput, optFns ...func(*cfn.Options)) (*cfn.CreateStackOutput, error)
	DescribeStacks(ctx context.Context, params *cfn.DescribeStacksInput, optFns ...func(*cfn.Options)) (*cfn.DescribeStacksOutput, error)
	DescribeStackEvents(ctx context.Context, params *cfn.DescribeStackEventsInput, optFns ...func(*cfn.Options)) (*cfn.DescribeStackEventsOutput, error)
	DeleteStack(ctx context.Context, params *cfn.DeleteStackInput, optFns ...func(*cfn.Options)) (*cfn.DeleteStackOutput, error)
}

// Stack is the resolved state of one CloudFormation stack: the fields this
// tool reads, everything else is left on the wire.
type Stack struct {
	ID           string
	Status       types.StackStatus
	StatusReason string
	Outputs      map[string]string
}

// Event is one immutable stack activity record.
type Event struct {
	ID           string
	Timestamp    time.Time
	LogicalID    string
	ResourceType string
	Status       string
	StatusReason string
	// Properties is the parsed resource-properties payload. Absent or
	// unparsable payloads yield an empty map, never an error.
	Properties map[string]any
}

// Client wraps CloudFormation operations for namespace stacks.
type Client struct {
	api API
}

// NewClient creates a client on top of a CloudFormation API implementation.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// CreateStack starts asynchronous creation of a stack from a template body
// and parameter map. The stack creates IAM roles, so the named-IAM capability
// is always acknowledged. Returns the stack ID.
func (c *Client) CreateStack(ctx context.Context, name, templateBody string, params map[string]string) (string, error) {
	input := &cfn.CreateStackInput{
		StackName:    aws.String(name),
		TemplateBody: aws.String(templateBody),
		Capabilities: []types.Capability{types.CapabilityCapabilityNamedIam},
	}
	for key, value := range params {
		input.Parameters = append(input.Parameters, types.Parameter{
			ParameterKey:   aws.String(key),
			ParameterValue: aws.String(value),
		})
	}

	out, err := c.api.CreateStack(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to create stack %s: %w", name, err)
	}
	return aws.ToString(out.StackId), nil
}

// DescribeStack resolves a stack by name. Zero matches yield ErrStackNotFound
// and more than one yields ErrStackAmbiguous, both without retry.
func (c *Client) DescribeStack(ctx context.Context, name string) (*Stack, error) {
	out, err := c.api.DescribeStacks(ctx, &cfn.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if err != nil {
		if isStackMissing(err) {
			return nil, fmt.Errorf("stack %s: %w", name, ErrStackNotFound)
		}
		return nil, fmt.Errorf("failed to describe stack %s: %w", name, err)
	}

	switch len(out.Stacks) {
	case 0:
		return nil, fmt.Errorf("stack %s: %w", name, ErrStackNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("stack %s: %d matches: %w", name, len(out.Stacks), ErrStackAmbiguous)
	}

	stack := out.Stacks[0]
	return &Stack{
		ID:           aws.ToString(stack.StackId),
		Status:       stack.StackStatus,
		StatusReason: aws.ToString(stack.StackStatusReason),
		Outputs:      outputMap(stack.Outputs),
	}, nil
}

// ListEvents returns the full current batch of activity events for a stack.
// The remote API returns events newest-first and may re-include old ones;
// ordering and deduplication are the Poller's job.
func (c *Client) ListEvents(ctx context.Context, name string) ([]Event, error) {
	var events []Event
	var nextToken *string
	for {
		out, err := c.api.DescribeStackEvents(ctx, &cfn.DescribeStackEventsInput{
			StackName: aws.String(name),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list events for stack %s: %w", name, err)
		}
		for _, raw := range out.StackEvents {
			events = append(events, toEvent(raw))
		}
		if out.NextToken == nil {
			return events, nil
		}
		nextToken = out.NextToken
	}
}

// DeleteStack starts asynchronous deletion of a stack. Callers that need the
// teardown to finish follow up with Poller.WaitForDelete.
func (c *Client) DeleteStack(ctx context.Context, name string) error {
	if _, err := c.api.DeleteStack(ctx, &cfn.DeleteStackInput{StackName: aws.String(name)}); err != nil {
		return fmt.Errorf("failed to delete stack %s: %w", name, err)
	}
	return nil
}

// outputMap flattens stack outputs, excluding entries with an empty key or
// empty value.
func outputMap(outputs []types.Output) map[string]string {
	result := make(map[string]string, len(outputs))
	for _, output := range outputs {
		key := aws.ToString(output.OutputKey)
		value := aws.ToString(output.OutputValue)
		if key == "" || value == "" {
			continue
		}
		result[key] = value
	}
	return result
}

func toEvent(raw types.StackEvent) Event {
	event := Event{
		ID:           aws.ToString(raw.EventId),
		LogicalID:    aws.ToString(raw.LogicalResourceId),
		ResourceType: aws.ToString(raw.ResourceType),
		Status:       string(raw.ResourceStatus),
		StatusReason: aws.ToString(raw.ResourceStatusReason),
		Properties:   map[string]any{},
	}
	if raw.Timestamp != nil {
		event.Timestamp = *raw.Timestamp
	}
	// Best effort: a missing or malformed properties payload must never
	// break event surfacing.
	if props := aws.ToString(raw.ResourceProperties); props != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(props), &parsed); err == nil {
			event.Properties = parsed
		}
	}
	return event
}
