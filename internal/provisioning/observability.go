package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/headline-1/alpha-k8s/internal/platform/cloudformation"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during
// provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Step      string            // Step name (e.g., "cloudformation-stack")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventStepStarted indicates a provisioning step has started.
	EventStepStarted EventType = "step.started"
	// EventStepCompleted indicates a provisioning step completed successfully.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed indicates a provisioning step failed.
	EventStepFailed EventType = "step.failed"

	// EventResourceCreated indicates a remote resource was created.
	EventResourceCreated EventType = "resource.created"
	// EventResourceDeleted indicates a remote resource was deleted.
	EventResourceDeleted EventType = "resource.deleted"

	// EventStackActivity indicates a stack activity record surfaced during
	// convergence polling.
	EventStackActivity EventType = "stack.event"

	// EventCompensationFailed indicates an unwind step failed; the unwind
	// itself continues.
	EventCompensationFailed EventType = "compensation.failed"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements the Logger interface.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements the Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	log.Print(formatEvent(event))
}

// formatEvent formats an event for console output.
func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Step != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Step))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		var fieldParts []string
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// StackEventAdapter forwards convergence-poller stack events to an Observer.
type StackEventAdapter struct {
	Observer Observer
}

// StackEvent implements cloudformation.EventObserver.
func (a StackEventAdapter) StackEvent(event cloudformation.Event) {
	message := event.Status
	if event.StatusReason != "" {
		message += ": " + event.StatusReason
	}
	a.Observer.Event(Event{
		Type:      EventStackActivity,
		Step:      "cloudformation-stack",
		Resource:  event.LogicalID,
		Message:   message,
		Timestamp: event.Timestamp,
		Fields:    map[string]string{"type": event.ResourceType},
	})
}
