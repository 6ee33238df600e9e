package cloudformation

import (
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for stack resolution. Both are terminal: callers must not
// retry resolution, they unwind.
var (
	// ErrStackNotFound indicates the stack name matched no stack.
	ErrStackNotFound = errors.New("stack not found")

	// ErrStackAmbiguous indicates the stack name matched more than one stack.
	ErrStackAmbiguous = errors.New("ambiguous stack name")
)

// ConvergenceError reports a stack that reached a terminal status other than
// the one awaited.
type ConvergenceError struct {
	StackName string
	Status    types.StackStatus
	Reason    string
}

func (e *ConvergenceError) Error() string {
	msg := "stack " + e.StackName + " entered terminal status " + string(e.Status)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// isStackMissing reports whether a DescribeStacks error means the stack does
// not exist. CloudFormation signals this as a ValidationError rather than a
// dedicated error type.
func isStackMissing(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}
