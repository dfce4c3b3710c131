package window

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

type testWidget struct {
	Scoped
	label string
	seen  *Window
}

func widgetRegistry() *Registry {
	r := NewRegistry()
	r.Define(NewClassDef("Widget", func(def *ClassDef, args ...any) (Instance, error) {
		w := &testWidget{}
		if len(args) > 0 {
			label, ok := args[0].(string)
			if !ok {
				return nil, errors.New("Widget: label must be a string")
			}
			w.label = label
		}
		// Record the mid-construction context for assertions
		if ctx, ok := def.CurrentContext(); ok {
			w.seen = ctx
		}
		return w, nil
	}))
	return r
}

func TestBinder_InstanceKeepsOwnerWindow(t *testing.T) {
	registry := widgetRegistry()
	winA := New(Options{URL: "https://a.test/", Registry: registry})
	winB := New(Options{URL: "https://b.test/", Registry: registry})

	instA, err := winA.Construct("Widget", "a")
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	instB, err := winB.Construct("Widget", "b")
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}

	if instA.OwnerWindow() != winA {
		t.Error("Instance A should report window A")
	}
	if instB.OwnerWindow() != winB {
		t.Error("Instance B should report window B")
	}
	// A later construction against the shared definition must not rebind
	// earlier instances.
	if instA.OwnerWindow() != winA {
		t.Error("Instance A rebound after a construction under window B")
	}
}

func TestBinder_ConstructorSeesCurrentContext(t *testing.T) {
	registry := widgetRegistry()
	win := New(Options{URL: "https://a.test/", Registry: registry})

	inst, err := win.Construct("Widget")
	if err != nil {
		t.Fatal(err)
	}
	if inst.(*testWidget).seen != win {
		t.Error("Constructor should observe the constructing window via CurrentContext")
	}
}

func TestBinder_ContextSlotRestored(t *testing.T) {
	registry := widgetRegistry()
	def := registry.Lookup("Widget")
	win := New(Options{Registry: registry})

	if _, ok := def.CurrentContext(); ok {
		t.Fatal("Slot should be absent before any construction")
	}

	if _, err := win.Construct("Widget"); err != nil {
		t.Fatal(err)
	}
	if ctx, ok := def.CurrentContext(); ok || ctx != nil {
		t.Error("Slot should be restored to absent after a successful construction")
	}

	// Restore also covers the error path
	if _, err := win.Construct("Widget", 42); err == nil {
		t.Fatal("Expected constructor error")
	}
	if _, ok := def.CurrentContext(); ok {
		t.Error("Slot should be restored to absent after a failed construction")
	}
}

func TestBinder_ConstructorError(t *testing.T) {
	registry := NewRegistry()
	registry.Define(NewClassDef("Broken", func(def *ClassDef, args ...any) (Instance, error) {
		return nil, errors.New("cannot build")
	}))
	registry.Define(NewClassDef("Nil", func(def *ClassDef, args ...any) (Instance, error) {
		return nil, nil
	}))
	win := New(Options{Registry: registry})

	if _, err := win.Construct("Broken"); err == nil {
		t.Error("Constructor error should surface")
	}
	if _, err := win.Construct("Nil"); err == nil {
		t.Error("Nil instance without error should be rejected")
	}
	if _, err := win.Construct("Unregistered"); err == nil {
		t.Error("Unknown class should be rejected")
	}
}

func TestBinder_ConcurrentConstruction(t *testing.T) {
	registry := widgetRegistry()

	const perWindow = 50
	windows := []*Window{
		New(Options{URL: "https://a.test/", Registry: registry}),
		New(Options{URL: "https://b.test/", Registry: registry}),
		New(Options{URL: "https://c.test/", Registry: registry}),
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(windows)*perWindow)
	for _, win := range windows {
		for i := 0; i < perWindow; i++ {
			wg.Add(1)
			go func(win *Window) {
				defer wg.Done()
				inst, err := win.Construct("Widget")
				if err != nil {
					errCh <- err
					return
				}
				if inst.OwnerWindow() != win {
					errCh <- fmt.Errorf("instance bound to the wrong window")
				}
				if inst.(*testWidget).seen != win {
					errCh <- fmt.Errorf("constructor observed another window's context")
				}
			}(win)
		}
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}
}

func TestBinder_BoundClassMemoized(t *testing.T) {
	registry := widgetRegistry()
	win := New(Options{Registry: registry})

	first := win.Class("Widget")
	second := win.Class("Widget")
	if first == nil || first != second {
		t.Error("Class wrappers should be memoized per window")
	}
	if win.Class("Nope") != nil {
		t.Error("Unknown class should yield nil")
	}
}

func TestBinder_ConstructorAccessor(t *testing.T) {
	registry := widgetRegistry()
	win := New(Options{Registry: registry})

	inst, err := win.Construct("Widget")
	if err != nil {
		t.Fatal(err)
	}
	ctor := inst.(*testWidget).Constructor()
	if ctor == nil {
		t.Fatal("Instance should report a constructor")
	}
	if ctor != win.Class("Widget") {
		t.Error("Constructor should be the window-scoped wrapper")
	}
	if ctor.Name() != "Widget" {
		t.Errorf("Expected class name Widget, got %s", ctor.Name())
	}
	if ctor.Window() != win {
		t.Error("Constructor should be scoped to the creating window")
	}
}

func TestBinder_ClosedWindowRejectsConstruction(t *testing.T) {
	registry := widgetRegistry()
	win := New(Options{Registry: registry})
	win.Abort()

	if _, err := win.Construct("Widget"); err == nil {
		t.Error("Construction under a closed window should fail")
	}
}

func TestBuiltinDocument_InheritsWindowURL(t *testing.T) {
	win := New(Options{URL: "https://example.com/page"})

	inst, err := win.Construct("Document")
	if err != nil {
		t.Fatal(err)
	}
	scoped := inst.(*ScopedDocument)
	if got := scoped.Doc.URL(); got != "https://example.com/page" {
		t.Errorf("Expected inherited URL, got %s", got)
	}
	if scoped.OwnerWindow() != win {
		t.Error("Scoped document should be owned by the constructing window")
	}
}

func TestBuiltinEvent_Validation(t *testing.T) {
	win := New(Options{})

	if _, err := win.Construct("Event"); err == nil {
		t.Error("Event without a type should fail")
	}
	if _, err := win.Construct("Event", ""); err == nil {
		t.Error("Event with an empty type should fail")
	}
	inst, err := win.Construct("Event", "click")
	if err != nil {
		t.Fatal(err)
	}
	if inst.(*ScopedEvent).Event.Type() != "click" {
		t.Error("Event type should round-trip")
	}
}
