package js

import (
	"github.com/dop251/goja"

	"github.com/hollowdom/hollowdom/window"
)

// storageObject exposes a window.Storage to scripts as a dynamic object:
// arbitrary property reads, writes, deletes, and enumeration are redirected
// to the ordered store, except the reserved names (length, key, getItem,
// setItem, removeItem, clear), which always resolve to store behavior even
// when a stored key collides with them. Collided keys remain reachable
// through getItem.
type storageObject struct {
	vm    *goja.Runtime
	store *window.Storage
}

var _ goja.DynamicObject = (*storageObject)(nil)

// Get implements property reads. Reserved names win over stored keys; an
// absent key yields null.
func (s *storageObject) Get(key string) goja.Value {
	switch key {
	case "length":
		return s.vm.ToValue(s.store.Length())
	case "key":
		return s.vm.ToValue(s.keyMethod)
	case "getItem":
		return s.vm.ToValue(s.getItemMethod)
	case "setItem":
		return s.vm.ToValue(s.setItemMethod)
	case "removeItem":
		return s.vm.ToValue(s.removeItemMethod)
	case "clear":
		return s.vm.ToValue(s.clearMethod)
	}

	value, ok := s.store.GetItem(key)
	if !ok {
		return goja.Null()
	}
	return s.vm.ToValue(value)
}

// Set implements property writes, coercing the value to text. Writes to
// reserved names are stored (reachable via getItem) but do not shadow the
// store's behavior.
func (s *storageObject) Set(key string, val goja.Value) bool {
	s.store.SetItem(key, val.String())
	return true
}

// Has reports key presence. Reserved names always exist.
func (s *storageObject) Has(key string) bool {
	if window.IsReservedStorageName(key) {
		return true
	}
	_, ok := s.store.GetItem(key)
	return ok
}

// Delete removes a stored key. Reserved names cannot be deleted, though a
// stored key of the same name is removed.
func (s *storageObject) Delete(key string) bool {
	s.store.RemoveItem(key)
	return true
}

// Keys enumerates stored keys in insertion order.
func (s *storageObject) Keys() []string {
	return s.store.Keys()
}

func (s *storageObject) keyMethod(call goja.FunctionCall) goja.Value {
	index := int(call.Argument(0).ToInteger())
	key, ok := s.store.Key(index)
	if !ok {
		return goja.Null()
	}
	return s.vm.ToValue(key)
}

func (s *storageObject) getItemMethod(call goja.FunctionCall) goja.Value {
	value, ok := s.store.GetItem(call.Argument(0).String())
	if !ok {
		return goja.Null()
	}
	return s.vm.ToValue(value)
}

func (s *storageObject) setItemMethod(call goja.FunctionCall) goja.Value {
	s.store.SetItem(call.Argument(0).String(), call.Argument(1).String())
	return goja.Undefined()
}

func (s *storageObject) removeItemMethod(call goja.FunctionCall) goja.Value {
	s.store.RemoveItem(call.Argument(0).String())
	return goja.Undefined()
}

func (s *storageObject) clearMethod(call goja.FunctionCall) goja.Value {
	s.store.Clear()
	return goja.Undefined()
}

// setupStorage installs localStorage and sessionStorage globals backed by the
// window's origin-scoped stores.
func (h *Host) setupStorage() {
	local := h.vm.NewDynamicObject(&storageObject{vm: h.vm, store: h.win.LocalStorage()})
	session := h.vm.NewDynamicObject(&storageObject{vm: h.vm, store: h.win.SessionStorage()})
	h.vm.Set("localStorage", local)
	h.vm.Set("sessionStorage", session)
}
