package js

import (
	"github.com/dop251/goja"

	"github.com/hollowdom/hollowdom/dom"
)

const eventSlot = "__event"

// wrapEvent builds the JS view of a dom event. The underlying event is kept
// in a hidden slot so dispatchEvent can unwrap it.
func (h *Host) wrapEvent(event *dom.Event) *goja.Object {
	obj := h.vm.NewObject()
	obj.Set(eventSlot, h.vm.ToValue(&eventRef{event: event}))

	obj.Set("type", event.Type())
	obj.Set("bubbles", event.Bubbles())
	obj.Set("cancelable", event.Cancelable())

	obj.DefineAccessorProperty("target", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if event.Target() == nil {
			return goja.Null()
		}
		return h.wrapNode(event.Target())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("currentTarget", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if event.CurrentTarget() == nil {
			return goja.Null()
		}
		return h.wrapNode(event.CurrentTarget())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("eventPhase", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(int(event.Phase()))
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("defaultPrevented", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(event.DefaultPrevented())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("preventDefault", func(call goja.FunctionCall) goja.Value {
		event.PreventDefault()
		return goja.Undefined()
	})
	obj.Set("stopPropagation", func(call goja.FunctionCall) goja.Value {
		event.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("stopImmediatePropagation", func(call goja.FunctionCall) goja.Value {
		event.StopImmediatePropagation()
		return goja.Undefined()
	})

	return obj
}

// eventRef anchors a dom event inside a JS object slot.
type eventRef struct {
	event *dom.Event
}

// unwrapEvent recovers the dom event behind a JS event object, or nil.
func (h *Host) unwrapEvent(value goja.Value) *dom.Event {
	obj, ok := value.(*goja.Object)
	if !ok {
		return nil
	}
	slot := obj.Get(eventSlot)
	if slot == nil {
		return nil
	}
	ref, ok := slot.Export().(*eventRef)
	if !ok {
		return nil
	}
	return ref.event
}

// SetupEventConstructor installs the global Event constructor so scripts can
// write new Event("click", {bubbles: true}).
func (h *Host) SetupEventConstructor() {
	h.vm.Set("Event", func(call goja.ConstructorCall) *goja.Object {
		eventType := ""
		if len(call.Arguments) > 0 {
			eventType = call.Arguments[0].String()
		}
		if eventType == "" {
			panic(h.vm.NewTypeError("Event constructor requires a type"))
		}

		init := dom.EventInit{}
		if len(call.Arguments) > 1 {
			if opts, ok := call.Arguments[1].(*goja.Object); ok {
				init.Bubbles = opts.Get("bubbles") != nil && opts.Get("bubbles").ToBoolean()
				init.Cancelable = opts.Get("cancelable") != nil && opts.Get("cancelable").ToBoolean()
			}
		}

		return h.wrapEvent(dom.NewEvent(eventType, init))
	})
}
