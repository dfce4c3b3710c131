package dom

import (
	"testing"
)

func buildEventTree(t *testing.T) (root, middle, target *Node) {
	t.Helper()
	doc := NewDocument()
	html := doc.CreateElement("html")
	doc.AsNode().AppendChild(html.AsNode())
	div := doc.CreateElement("div")
	html.AsNode().AppendChild(div.AsNode())
	button := doc.CreateElement("button")
	div.AsNode().AppendChild(button.AsNode())
	return html.AsNode(), div.AsNode(), button.AsNode()
}

func TestDispatchEvent_AtTarget(t *testing.T) {
	_, _, target := buildEventTree(t)

	called := 0
	target.AddEventListener("click", NewListener(func(e *Event) {
		called++
		if e.Target() != target {
			t.Error("Target should be the dispatching node")
		}
		if e.CurrentTarget() != target {
			t.Error("CurrentTarget should be the node being visited")
		}
		if e.Phase() != EventPhaseAtTarget {
			t.Errorf("Expected at-target phase, got %v", e.Phase())
		}
	}), ListenerOptions{})

	target.DispatchEvent(NewEvent("click", EventInit{}))
	if called != 1 {
		t.Errorf("Expected 1 invocation, got %d", called)
	}
}

func TestAddEventListener_Idempotent(t *testing.T) {
	_, _, target := buildEventTree(t)

	called := 0
	listener := NewListener(func(e *Event) { called++ })

	target.AddEventListener("click", listener, ListenerOptions{})
	target.AddEventListener("click", listener, ListenerOptions{})

	target.DispatchEvent(NewEvent("click", EventInit{}))
	if called != 1 {
		t.Errorf("Duplicate registration should invoke once, got %d", called)
	}

	// Same listener with capture=true is a distinct tuple
	target.AddEventListener("click", listener, ListenerOptions{Capture: true})
	called = 0
	target.DispatchEvent(NewEvent("click", EventInit{}))
	if called != 2 {
		t.Errorf("Capture and bubble registrations should both fire, got %d", called)
	}
}

func TestRemoveEventListener(t *testing.T) {
	_, _, target := buildEventTree(t)

	called := 0
	listener := NewListener(func(e *Event) { called++ })
	target.AddEventListener("click", listener, ListenerOptions{})
	target.RemoveEventListener("click", listener, false)

	target.DispatchEvent(NewEvent("click", EventInit{}))
	if called != 0 {
		t.Errorf("Removed listener fired %d times", called)
	}

	if target.listeners != nil {
		t.Error("Empty registry should be released")
	}
}

func TestDispatchEvent_PhaseOrder(t *testing.T) {
	root, middle, target := buildEventTree(t)

	var order []string
	add := func(n *Node, label string, capture bool) {
		n.AddEventListener("click", NewListener(func(e *Event) {
			order = append(order, label)
		}), ListenerOptions{Capture: capture})
	}

	add(root, "root-capture", true)
	add(middle, "middle-capture", true)
	add(target, "target-capture", true)
	add(target, "target-bubble", false)
	add(middle, "middle-bubble", false)
	add(root, "root-bubble", false)

	target.DispatchEvent(NewEvent("click", EventInit{Bubbles: true}))

	want := []string{
		"root-capture", "middle-capture",
		"target-capture", "target-bubble",
		"middle-bubble", "root-bubble",
	}
	if len(order) != len(want) {
		t.Fatalf("Expected %d invocations, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestDispatchEvent_NonBubbling(t *testing.T) {
	root, _, target := buildEventTree(t)

	bubbled := false
	root.AddEventListener("focus", NewListener(func(e *Event) { bubbled = true }), ListenerOptions{})

	target.DispatchEvent(NewEvent("focus", EventInit{Bubbles: false}))
	if bubbled {
		t.Error("Non-bubbling event should not reach ancestors in the bubble phase")
	}
}

func TestEvent_Once(t *testing.T) {
	_, _, target := buildEventTree(t)

	onceCalls := 0
	afterCalls := 0
	target.AddEventListener("click", NewListener(func(e *Event) { onceCalls++ }), ListenerOptions{Once: true})
	target.AddEventListener("click", NewListener(func(e *Event) { afterCalls++ }), ListenerOptions{})

	target.DispatchEvent(NewEvent("click", EventInit{}))
	target.DispatchEvent(NewEvent("click", EventInit{}))

	if onceCalls != 1 {
		t.Errorf("Once listener fired %d times", onceCalls)
	}
	if afterCalls != 2 {
		t.Errorf("Regular listener fired %d times", afterCalls)
	}
}

func TestEvent_StopPropagation(t *testing.T) {
	root, middle, target := buildEventTree(t)

	var order []string
	middle.AddEventListener("click", NewListener(func(e *Event) {
		order = append(order, "middle-capture-1")
		e.StopPropagation()
	}), ListenerOptions{Capture: true})
	middle.AddEventListener("click", NewListener(func(e *Event) {
		// Remaining listeners on the same node still run
		order = append(order, "middle-capture-2")
	}), ListenerOptions{Capture: true})
	target.AddEventListener("click", NewListener(func(e *Event) {
		order = append(order, "target")
	}), ListenerOptions{})
	root.AddEventListener("click", NewListener(func(e *Event) {
		order = append(order, "root-bubble")
	}), ListenerOptions{})

	target.DispatchEvent(NewEvent("click", EventInit{Bubbles: true}))

	want := []string{"middle-capture-1", "middle-capture-2"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
}

func TestEvent_StopImmediatePropagation(t *testing.T) {
	_, _, target := buildEventTree(t)

	var order []string
	target.AddEventListener("click", NewListener(func(e *Event) {
		order = append(order, "first")
		e.StopImmediatePropagation()
	}), ListenerOptions{})
	target.AddEventListener("click", NewListener(func(e *Event) {
		order = append(order, "second")
	}), ListenerOptions{})

	target.DispatchEvent(NewEvent("click", EventInit{}))

	if len(order) != 1 || order[0] != "first" {
		t.Errorf("StopImmediatePropagation should skip remaining listeners, got %v", order)
	}
}

func TestEvent_PreventDefault(t *testing.T) {
	_, _, target := buildEventTree(t)

	target.AddEventListener("submit", NewListener(func(e *Event) {
		e.PreventDefault()
	}), ListenerOptions{})

	if target.DispatchEvent(NewEvent("submit", EventInit{Cancelable: true})) {
		t.Error("DispatchEvent should return false after preventDefault on a cancelable event")
	}
	if target.DispatchEvent(NewEvent("submit", EventInit{Cancelable: false})) != true {
		t.Error("preventDefault on a non-cancelable event should be ignored")
	}
}

func TestEvent_PassivePreventDefaultIgnored(t *testing.T) {
	_, _, target := buildEventTree(t)

	target.AddEventListener("scroll", NewListener(func(e *Event) {
		e.PreventDefault()
	}), ListenerOptions{Passive: true})

	if !target.DispatchEvent(NewEvent("scroll", EventInit{Cancelable: true})) {
		t.Error("preventDefault inside a passive listener should be a no-op")
	}
}

func TestEvent_ListenerPanicReported(t *testing.T) {
	_, _, target := buildEventTree(t)

	var reported any
	SetErrorReporter(func(err any, event *Event) { reported = err })
	defer SetErrorReporter(nil)

	called := false
	target.AddEventListener("click", NewListener(func(e *Event) {
		panic("listener boom")
	}), ListenerOptions{})
	target.AddEventListener("click", NewListener(func(e *Event) {
		called = true
	}), ListenerOptions{})

	target.DispatchEvent(NewEvent("click", EventInit{}))

	if reported != "listener boom" {
		t.Errorf("Expected panic to be reported, got %v", reported)
	}
	if !called {
		t.Error("Dispatch should continue past a panicking listener")
	}
}

func TestEvent_AbortSignalRemovesListener(t *testing.T) {
	_, _, target := buildEventTree(t)

	controller := NewAbortController()
	called := 0
	target.AddEventListener("click", NewListener(func(e *Event) { called++ }),
		ListenerOptions{Signal: controller.Signal()})

	target.DispatchEvent(NewEvent("click", EventInit{}))
	controller.Abort(nil)
	target.DispatchEvent(NewEvent("click", EventInit{}))

	if called != 1 {
		t.Errorf("Expected 1 invocation before abort, got %d", called)
	}

	// Registering with an already-aborted signal is a no-op
	target.AddEventListener("click", NewListener(func(e *Event) { called++ }),
		ListenerOptions{Signal: controller.Signal()})
	target.DispatchEvent(NewEvent("click", EventInit{}))
	if called != 1 {
		t.Error("Listener with aborted signal should never fire")
	}
}
