package window

import (
	"fmt"
	"sync"
)

// Instance is any object produced by constructing a shared class under a
// window. Embedding Scoped satisfies it.
type Instance interface {
	bind(owner *Window, class *ClassDef)
	OwnerWindow() *Window
}

// Constructor builds one instance of a shared class. It runs inside the
// class's construction critical section and may call def.CurrentContext to
// read the window it is being constructed under.
type Constructor func(def *ClassDef, args ...any) (Instance, error)

// ClassDef is one behavior definition shared by every window. The definition
// itself is window-neutral; a transient context slot is attached to it only
// for the duration of a construction, then restored, so instances built under
// different windows never see each other's context.
type ClassDef struct {
	name string
	ctor Constructor

	// mu serializes constructions against this class identity. Construction
	// can be re-entrant through a different class (a constructor building an
	// instance of another class) but must never re-enter the same class on
	// the same goroutine.
	mu     sync.Mutex
	ctx    *Window
	hasCtx bool
}

// NewClassDef creates a shared class definition.
func NewClassDef(name string, ctor Constructor) *ClassDef {
	return &ClassDef{name: name, ctor: ctor}
}

// Name returns the class name, e.g. "Document".
func (d *ClassDef) Name() string {
	return d.name
}

// CurrentContext returns the window a construction is running under. Only
// meaningful inside a Constructor; outside construction the slot is absent.
func (d *ClassDef) CurrentContext() (*Window, bool) {
	return d.ctx, d.hasCtx
}

// construct builds one instance of this class under w: it attaches w to the
// shared definition, runs the constructor (which may read the attached
// context), stamps w onto the instance, and restores the definition's
// pre-construction context on every exit path, including constructor errors.
func (d *ClassDef) construct(w *Window, args ...any) (inst Instance, err error) {
	d.mu.Lock()
	savedCtx, savedHas := d.ctx, d.hasCtx
	d.ctx, d.hasCtx = w, true
	defer func() {
		d.ctx, d.hasCtx = savedCtx, savedHas
		d.mu.Unlock()
	}()

	inst, err = d.ctor(d, args...)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("class %s: constructor returned no instance", d.name)
	}

	// Instance-level stamp overrides the shared definition permanently, so
	// the instance keeps reporting this window after the slot is restored.
	inst.bind(w, d)
	return inst, nil
}

// BoundClass is a shared class definition scoped to one window. Instances
// created through it are stamped with that window and report the BoundClass
// as their constructor.
type BoundClass struct {
	def *ClassDef
	win *Window
}

// New constructs an instance of the class under the bound window.
func (b *BoundClass) New(args ...any) (Instance, error) {
	if b.win.Closed() {
		return nil, fmt.Errorf("class %s: window is closed", b.def.name)
	}
	return b.def.construct(b.win, args...)
}

// Name returns the underlying class name.
func (b *BoundClass) Name() string {
	return b.def.name
}

// Window returns the window this wrapper is scoped to.
func (b *BoundClass) Window() *Window {
	return b.win
}

// Definition returns the shared definition behind this wrapper.
func (b *BoundClass) Definition() *ClassDef {
	return b.def
}

// Scoped is the embeddable base for instances of shared classes. The binder
// stamps the owning window and class onto it at construction; both resolve
// permanently to the creating window regardless of later constructions
// against the same shared definition.
type Scoped struct {
	owner *Window
	class *ClassDef
}

func (s *Scoped) bind(owner *Window, class *ClassDef) {
	s.owner = owner
	s.class = class
}

// OwnerWindow returns the window the instance was constructed under.
func (s *Scoped) OwnerWindow() *Window {
	return s.owner
}

// Constructor returns the window-scoped class wrapper the instance reports as
// its constructor.
func (s *Scoped) Constructor() *BoundClass {
	if s.owner == nil || s.class == nil {
		return nil
	}
	return s.owner.Class(s.class.name)
}

// Registry holds the shared class definitions used by every window.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*ClassDef
}

// NewRegistry creates an empty class registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*ClassDef)}
}

// Define registers a class definition. Redefining a name replaces the earlier
// definition for windows that have not bound it yet.
func (r *Registry) Define(def *ClassDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[def.name] = def
}

// Lookup returns the definition for name, or nil.
func (r *Registry) Lookup(name string) *ClassDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[name]
}

// Names returns the registered class names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	return names
}
