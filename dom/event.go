package dom

import (
	"time"
)

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// Event represents a DOM event traveling through the tree. Events are created
// with NewEvent and dispatched with Node.DispatchEvent.
type Event struct {
	eventType  string
	bubbles    bool
	cancelable bool

	target        *Node
	currentTarget *Node
	phase         EventPhase

	defaultPrevented bool
	stopPropagation  bool
	stopImmediate    bool

	// currentPassive is true while a passive listener is being invoked;
	// PreventDefault is a no-op during that window.
	currentPassive bool

	isTrusted bool
	timeStamp time.Time

	// Detail carries arbitrary payload for custom events.
	Detail any
}

// EventInit configures a new Event.
type EventInit struct {
	Bubbles    bool
	Cancelable bool
}

// NewEvent creates a new event of the given type.
func NewEvent(eventType string, init EventInit) *Event {
	return &Event{
		eventType:  eventType,
		bubbles:    init.Bubbles,
		cancelable: init.Cancelable,
		timeStamp:  time.Now(),
	}
}

// Type returns the event type, e.g. "click".
func (e *Event) Type() string {
	return e.eventType
}

// Bubbles returns true if the event bubbles up through the tree.
func (e *Event) Bubbles() bool {
	return e.bubbles
}

// Cancelable returns true if the event's default action can be prevented.
func (e *Event) Cancelable() bool {
	return e.cancelable
}

// Target returns the node the event was dispatched to.
func (e *Event) Target() *Node {
	return e.target
}

// CurrentTarget returns the node whose listeners are currently being invoked.
func (e *Event) CurrentTarget() *Node {
	return e.currentTarget
}

// Phase returns the current dispatch phase.
func (e *Event) Phase() EventPhase {
	return e.phase
}

// TimeStamp returns the event's creation time.
func (e *Event) TimeStamp() time.Time {
	return e.timeStamp
}

// IsTrusted returns true for events generated by the runtime itself rather
// than dispatched by application code.
func (e *Event) IsTrusted() bool {
	return e.isTrusted
}

// DefaultPrevented returns true if PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// PreventDefault cancels the event's default action if the event is
// cancelable. Ignored inside passive listeners.
func (e *Event) PreventDefault() {
	if e.cancelable && !e.currentPassive {
		e.defaultPrevented = true
	}
}

// StopPropagation prevents the event from reaching any further nodes in the
// current phase. Listeners remaining on the current node still run.
func (e *Event) StopPropagation() {
	e.stopPropagation = true
}

// StopImmediatePropagation prevents any further listeners from running,
// including those remaining on the current node.
func (e *Event) StopImmediatePropagation() {
	e.stopPropagation = true
	e.stopImmediate = true
}
