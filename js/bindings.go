package js

import (
	"github.com/dop251/goja"

	"github.com/hollowdom/hollowdom/dom"
)

// listenerBridge pairs a JS callback with the Go listener wrapping it, so
// removeEventListener can find the registration by callback identity.
type listenerBridge struct {
	node      *dom.Node
	eventType string
	value     goja.Value
	capture   bool
	listener  *dom.EventListener
}

// setupDocument installs the document global.
func (h *Host) setupDocument() {
	h.vm.Set("document", h.wrapDocument(h.win.Document()))
}

func (h *Host) wrapDocument(doc *dom.Document) *goja.Object {
	node := doc.AsNode()
	if obj, ok := h.nodeObjects[node]; ok {
		return obj
	}

	obj := h.vm.NewObject()
	h.nodeObjects[node] = obj

	obj.Set("nodeType", int(dom.DocumentNode))
	obj.DefineAccessorProperty("documentElement", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.wrapElementValue(doc.DocumentElement())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("body", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.wrapElementValue(doc.Body())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("title", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(doc.Title())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		el, err := doc.CreateElementWithError(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.wrapElement(el)
	})

	obj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return h.wrapNode(doc.CreateTextNode(call.Argument(0).String()))
	})

	obj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return h.wrapElementValue(doc.GetElementById(call.Argument(0).String()))
	})

	obj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return h.wrapElements(doc.GetElementsByTagName(call.Argument(0).String()))
	})

	obj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return h.wrapElements(doc.GetElementsByClassName(call.Argument(0).String()))
	})

	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		el, err := doc.QuerySelector(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.wrapElementValue(el)
	})

	obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		els, err := doc.QuerySelectorAll(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.wrapElements(els)
	})

	h.bindEventTarget(obj, node)
	return obj
}

// wrapNode returns the stable JS object for a dom node.
func (h *Host) wrapNode(node *dom.Node) *goja.Object {
	if node == nil {
		return nil
	}
	if el := node.AsElement(); el != nil {
		return h.wrapElement(el)
	}
	if obj, ok := h.nodeObjects[node]; ok {
		return obj
	}

	obj := h.vm.NewObject()
	h.nodeObjects[node] = obj

	obj.Set("nodeType", int(node.NodeType()))
	obj.Set("nodeName", node.NodeName())
	obj.DefineAccessorProperty("nodeValue", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(node.NodeValue())
	}), h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		node.SetNodeValue(call.Argument(0).String())
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	h.bindEventTarget(obj, node)
	return obj
}

func (h *Host) wrapElementValue(el *dom.Element) goja.Value {
	if el == nil {
		return goja.Null()
	}
	return h.wrapElement(el)
}

func (h *Host) wrapElements(els []*dom.Element) goja.Value {
	arr := make([]any, len(els))
	for i, el := range els {
		arr[i] = h.wrapElement(el)
	}
	return h.vm.ToValue(arr)
}

func (h *Host) wrapElement(el *dom.Element) *goja.Object {
	if el == nil {
		return nil
	}
	node := el.AsNode()
	if obj, ok := h.nodeObjects[node]; ok {
		return obj
	}

	obj := h.vm.NewObject()
	h.nodeObjects[node] = obj

	obj.Set("nodeType", int(dom.ElementNode))
	obj.Set("tagName", el.TagName())
	obj.Set("localName", el.LocalName())

	obj.DefineAccessorProperty("id", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(el.Id())
	}), h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		el.SetId(call.Argument(0).String())
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("className", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(el.ClassName())
	}), h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		el.SetClassName(call.Argument(0).String())
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("textContent", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(node.TextContent())
	}), h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		node.SetTextContent(call.Argument(0).String())
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("innerHTML", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(el.InnerHTML())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("parentElement", h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return h.wrapElementValue(node.ParentElement())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if !el.HasAttribute(name) {
			return goja.Null()
		}
		return h.vm.ToValue(el.GetAttribute(name))
	})

	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		err := el.SetAttributeWithError(call.Argument(0).String(), call.Argument(1).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return goja.Undefined()
	})

	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		el.RemoveAttribute(call.Argument(0).String())
		return goja.Undefined()
	})

	obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		return h.vm.ToValue(el.HasAttribute(call.Argument(0).String()))
	})

	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := h.unwrapNode(call.Argument(0))
		if child == nil {
			panic(h.vm.NewTypeError("appendChild: argument is not a node"))
		}
		if _, err := node.AppendChildWithError(child); err != nil {
			panic(h.vm.NewGoError(err))
		}
		return call.Argument(0)
	})

	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := h.unwrapNode(call.Argument(0))
		if child == nil {
			panic(h.vm.NewTypeError("removeChild: argument is not a node"))
		}
		if _, err := node.RemoveChildWithError(child); err != nil {
			panic(h.vm.NewGoError(err))
		}
		return call.Argument(0)
	})

	obj.Set("remove", func(call goja.FunctionCall) goja.Value {
		el.Remove()
		return goja.Undefined()
	})

	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		found, err := el.QuerySelector(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.wrapElementValue(found)
	})

	obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		found, err := el.QuerySelectorAll(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.wrapElements(found)
	})

	obj.Set("matches", func(call goja.FunctionCall) goja.Value {
		matched, err := el.Matches(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.vm.ToValue(matched)
	})

	obj.Set("closest", func(call goja.FunctionCall) goja.Value {
		found, err := el.Closest(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.wrapElementValue(found)
	})

	h.bindEventTarget(obj, node)
	return obj
}

// unwrapNode resolves a JS value back to the dom node it wraps.
func (h *Host) unwrapNode(value goja.Value) *dom.Node {
	obj, ok := value.(*goja.Object)
	if !ok {
		return nil
	}
	for node, wrapped := range h.nodeObjects {
		if wrapped == obj {
			return node
		}
	}
	return nil
}

// bindEventTarget installs addEventListener, removeEventListener, and
// dispatchEvent on a wrapped node.
func (h *Host) bindEventTarget(obj *goja.Object, node *dom.Node) {
	var bridges []*listenerBridge

	findBridge := func(eventType string, value goja.Value, capture bool) (*listenerBridge, int) {
		for i, b := range bridges {
			if b.eventType == eventType && b.capture == capture && b.value.SameAs(value) {
				return b, i
			}
		}
		return nil, -1
	}

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		eventType := call.Argument(0).String()
		callbackValue := call.Argument(1)
		callback, ok := goja.AssertFunction(callbackValue)
		if !ok {
			return goja.Undefined()
		}

		opts := parseListenerOptions(call.Argument(2))

		// Same (type, callback, capture) tuple already registered
		if existing, _ := findBridge(eventType, callbackValue, opts.Capture); existing != nil {
			return goja.Undefined()
		}

		listener := dom.NewListener(func(event *dom.Event) {
			_, _ = callback(goja.Undefined(), h.wrapEvent(event))
		})
		bridges = append(bridges, &listenerBridge{
			node:      node,
			eventType: eventType,
			value:     callbackValue,
			capture:   opts.Capture,
			listener:  listener,
		})
		node.AddEventListener(eventType, listener, opts)
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		eventType := call.Argument(0).String()
		capture := parseListenerOptions(call.Argument(2)).Capture

		if bridge, i := findBridge(eventType, call.Argument(1), capture); bridge != nil {
			node.RemoveEventListener(eventType, bridge.listener, capture)
			bridges = append(bridges[:i], bridges[i+1:]...)
		}
		return goja.Undefined()
	})

	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		event := h.unwrapEvent(call.Argument(0))
		if event == nil {
			panic(h.vm.NewTypeError("dispatchEvent: argument is not an Event"))
		}
		return h.vm.ToValue(node.DispatchEvent(event))
	})
}

func parseListenerOptions(value goja.Value) dom.ListenerOptions {
	opts := dom.ListenerOptions{}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return opts
	}
	if b, ok := value.Export().(bool); ok {
		opts.Capture = b
		return opts
	}
	if obj, ok := value.(*goja.Object); ok {
		opts.Capture = obj.Get("capture") != nil && obj.Get("capture").ToBoolean()
		opts.Once = obj.Get("once") != nil && obj.Get("once").ToBoolean()
		opts.Passive = obj.Get("passive") != nil && obj.Get("passive").ToBoolean()
	}
	return opts
}
