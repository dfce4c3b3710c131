package dom

// EventListener wraps a handler function so registrations can be compared by
// identity. Go functions are not comparable, so the (type, handler, capture)
// uniqueness rule works on the listener pointer: registering the same
// *EventListener twice for the same type and capture flag is a no-op, while
// two listeners built from the same function are distinct.
type EventListener struct {
	fn func(*Event)
}

// NewListener creates a listener from a handler function.
func NewListener(fn func(*Event)) *EventListener {
	return &EventListener{fn: fn}
}

// HandleEvent invokes the wrapped handler.
func (l *EventListener) HandleEvent(event *Event) {
	if l.fn != nil {
		l.fn(event)
	}
}

// ListenerOptions configures AddEventListener.
type ListenerOptions struct {
	// Capture registers the listener for the capture phase instead of the
	// bubble phase.
	Capture bool
	// Once removes the listener after its first invocation, before the next
	// listener in the same phase runs.
	Once bool
	// Passive makes PreventDefault a no-op inside the listener.
	Passive bool
	// Signal removes the listener when the signal aborts.
	Signal *AbortSignal
}

// listenerEntry is one registered (handler, options) pair.
type listenerEntry struct {
	listener *EventListener
	options  ListenerOptions
}

// ListenerRegistry holds a node's listeners, split per event type into a
// capturing ordered list and a bubbling ordered list. Nodes allocate the
// registry on the first AddEventListener call and release it again when the
// last listener is removed.
type ListenerRegistry struct {
	capturing map[string][]*listenerEntry
	bubbling  map[string][]*listenerEntry
}

func newListenerRegistry() *ListenerRegistry {
	return &ListenerRegistry{
		capturing: make(map[string][]*listenerEntry),
		bubbling:  make(map[string][]*listenerEntry),
	}
}

func (r *ListenerRegistry) listFor(capture bool) map[string][]*listenerEntry {
	if capture {
		return r.capturing
	}
	return r.bubbling
}

// add registers an entry, enforcing (type, handler, capture) uniqueness.
// Returns true if the entry was inserted.
func (r *ListenerRegistry) add(eventType string, listener *EventListener, options ListenerOptions) bool {
	list := r.listFor(options.Capture)
	for _, entry := range list[eventType] {
		if entry.listener == listener {
			return false
		}
	}
	list[eventType] = append(list[eventType], &listenerEntry{listener: listener, options: options})
	return true
}

// remove unregisters the (type, handler, capture) entry, if present.
func (r *ListenerRegistry) remove(eventType string, listener *EventListener, capture bool) {
	list := r.listFor(capture)
	entries := list[eventType]
	for i, entry := range entries {
		if entry.listener == listener {
			list[eventType] = append(entries[:i], entries[i+1:]...)
			if len(list[eventType]) == 0 {
				delete(list, eventType)
			}
			return
		}
	}
}

func (r *ListenerRegistry) empty() bool {
	return len(r.capturing) == 0 && len(r.bubbling) == 0
}

// snapshot copies the entries for one type and phase, so listeners added or
// removed during dispatch do not affect the in-flight dispatch.
func (r *ListenerRegistry) snapshot(eventType string, capture bool) []*listenerEntry {
	entries := r.listFor(capture)[eventType]
	if len(entries) == 0 {
		return nil
	}
	out := make([]*listenerEntry, len(entries))
	copy(out, entries)
	return out
}

// errorReporter receives errors recovered from listeners. Dispatch always
// continues past a failing listener.
var errorReporter func(err any, event *Event)

// SetErrorReporter installs the process-wide sink for errors raised by event
// listeners. Passing nil silences reporting.
func SetErrorReporter(reporter func(err any, event *Event)) {
	errorReporter = reporter
}

// AddEventListener registers a listener for events of the given type.
// Registering an identical (type, handler, capture) tuple twice yields
// exactly one entry.
func (n *Node) AddEventListener(eventType string, listener *EventListener, options ListenerOptions) {
	if listener == nil || eventType == "" {
		return
	}
	if options.Signal != nil && options.Signal.Aborted() {
		return
	}

	if n.listeners == nil {
		n.listeners = newListenerRegistry()
	}
	if !n.listeners.add(eventType, listener, options) {
		return
	}

	if options.Signal != nil {
		options.Signal.onAbort(func() {
			n.RemoveEventListener(eventType, listener, options.Capture)
		})
	}
}

// RemoveEventListener unregisters a listener previously added with the same
// type, handler, and capture flag.
func (n *Node) RemoveEventListener(eventType string, listener *EventListener, capture bool) {
	if n.listeners == nil {
		return
	}
	n.listeners.remove(eventType, listener, capture)
	if n.listeners.empty() {
		n.listeners = nil
	}
}

// HasEventListeners returns true if any listener is registered for the type.
func (n *Node) HasEventListeners(eventType string) bool {
	if n.listeners == nil {
		return false
	}
	return len(n.listeners.capturing[eventType]) > 0 || len(n.listeners.bubbling[eventType]) > 0
}

// DispatchEvent dispatches an event at this node: capture phase from the root
// down to the target's parent, at-target (both lists), then the bubble phase
// from the target's parent up to the root if the event bubbles. Returns false
// if a listener called PreventDefault on a cancelable event.
func (n *Node) DispatchEvent(event *Event) bool {
	if event == nil {
		return true
	}

	event.target = n
	event.defaultPrevented = false
	event.stopPropagation = false
	event.stopImmediate = false

	// Propagation path: target's ancestors, nearest first.
	var ancestors []*Node
	for cur := n.parentNode; cur != nil; cur = cur.parentNode {
		ancestors = append(ancestors, cur)
	}

	// Capture phase, root to target's parent.
	event.phase = EventPhaseCapturing
	for i := len(ancestors) - 1; i >= 0 && !event.stopPropagation; i-- {
		ancestors[i].invokeListeners(event, true)
	}

	// At target: capturing list first, then bubbling.
	if !event.stopPropagation {
		event.phase = EventPhaseAtTarget
		n.invokeListeners(event, true)
		if !event.stopImmediate {
			n.invokeListeners(event, false)
		}
	}

	// Bubble phase, target's parent to root.
	if event.bubbles && !event.stopPropagation {
		event.phase = EventPhaseBubbling
		for _, ancestor := range ancestors {
			if event.stopPropagation {
				break
			}
			ancestor.invokeListeners(event, false)
		}
	}

	event.phase = EventPhaseNone
	event.currentTarget = nil

	return !event.defaultPrevented
}

// invokeListeners runs this node's listeners for the event's type in one
// phase list. Once listeners are removed before the next listener runs; a
// panicking listener is reported and dispatch continues.
func (n *Node) invokeListeners(event *Event, capture bool) {
	if n.listeners == nil {
		return
	}

	entries := n.listeners.snapshot(event.eventType, capture)
	if entries == nil {
		return
	}

	event.currentTarget = n
	for _, entry := range entries {
		if event.stopImmediate {
			break
		}

		if entry.options.Once {
			n.RemoveEventListener(event.eventType, entry.listener, capture)
		}

		event.currentPassive = entry.options.Passive
		invokeListener(entry.listener, event)
		event.currentPassive = false
	}
}

func invokeListener(listener *EventListener, event *Event) {
	defer func() {
		if err := recover(); err != nil {
			if errorReporter != nil {
				errorReporter(err, event)
			}
		}
	}()
	listener.HandleEvent(event)
}
