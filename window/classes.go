package window

import (
	"fmt"

	"github.com/hollowdom/hollowdom/dom"
)

// Builtin shared classes. Each is defined once and constructed under any
// window; the binder stamps the creating window onto every instance.

// ScopedDocument is a document owned by one window.
type ScopedDocument struct {
	Scoped
	Doc *dom.Document
}

// ScopedEvent is an event owned by one window.
type ScopedEvent struct {
	Scoped
	Event *dom.Event
}

// ScopedResponse is a fetched resource whose owning window resolves
// permanently to the window that issued the request.
type ScopedResponse struct {
	Scoped
	URL     string
	Status  int
	Body    []byte
	Headers map[string]string
}

// BuiltinRegistry returns a registry with the builtin shared classes:
// "Document", "Event", and "Response".
func BuiltinRegistry() *Registry {
	r := NewRegistry()

	r.Define(NewClassDef("Document", func(def *ClassDef, args ...any) (Instance, error) {
		// The constructor reads its window mid-construction to inherit the
		// creating window's document URL.
		doc := dom.NewDocument()
		if w, ok := def.CurrentContext(); ok && w != nil {
			doc.SetURL(w.Document().URL())
		}
		return &ScopedDocument{Doc: doc}, nil
	}))

	r.Define(NewClassDef("Event", func(def *ClassDef, args ...any) (Instance, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("Event: missing type argument")
		}
		eventType, ok := args[0].(string)
		if !ok || eventType == "" {
			return nil, fmt.Errorf("Event: type must be a non-empty string")
		}
		init := dom.EventInit{}
		if len(args) > 1 {
			if given, ok := args[1].(dom.EventInit); ok {
				init = given
			}
		}
		return &ScopedEvent{Event: dom.NewEvent(eventType, init)}, nil
	}))

	r.Define(NewClassDef("Response", func(def *ClassDef, args ...any) (Instance, error) {
		resp := &ScopedResponse{}
		if len(args) > 0 {
			url, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("Response: url must be a string")
			}
			resp.URL = url
		}
		return resp, nil
	}))

	return r
}
