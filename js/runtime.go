// Package js embeds the goja JavaScript engine and exposes a window's
// document, storage, timers, and events to scripts.
package js

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/hollowdom/hollowdom/dom"
	"github.com/hollowdom/hollowdom/window"
)

// bootstrap is shared, window-neutral setup compiled once for every host.
var bootstrap = goja.MustCompile("bootstrap.js", `
	var self = this;
	var globalThis = this;
`, false)

// Host binds one goja runtime to one window. Scripts run on the window's
// goroutine; the host is not safe for concurrent use.
type Host struct {
	vm     *goja.Runtime
	win    *window.Window
	logger *slog.Logger

	// nodeObjects keeps a stable JS object per dom node so identity
	// comparisons (a === b) hold across lookups.
	nodeObjects map[*dom.Node]*goja.Object

	errors []error
}

// NewHost creates a host for the given window and installs the global
// surface: document, localStorage, sessionStorage, console, and timers.
func NewHost(w *window.Window) (*Host, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	h := &Host{
		vm:          vm,
		win:         w,
		logger:      w.Logger(),
		nodeObjects: make(map[*dom.Node]*goja.Object),
	}

	if _, err := vm.RunProgram(bootstrap); err != nil {
		return nil, fmt.Errorf("js bootstrap: %w", err)
	}

	h.setupConsole()
	h.setupTimers()
	h.setupDocument()
	h.setupStorage()
	h.SetupEventConstructor()

	return h, nil
}

// VM returns the underlying goja runtime.
func (h *Host) VM() *goja.Runtime {
	return h.vm
}

// Window returns the bound window.
func (h *Host) Window() *window.Window {
	return h.win
}

// Execute runs script text and returns its completion value.
func (h *Host) Execute(code string) (result goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			h.errors = append(h.errors, err)
		}
	}()

	result, err = h.vm.RunString(code)
	if err != nil {
		h.errors = append(h.errors, err)
	}
	return result, err
}

// ExecuteScript compiles and runs a named script. Compile and runtime errors
// are recorded and returned but never panic the host.
func (h *Host) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			h.errors = append(h.errors, err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		h.errors = append(h.errors, err)
		return err
	}

	if _, err = h.vm.RunProgram(program); err != nil {
		h.errors = append(h.errors, err)
	}
	return err
}

// Errors returns the errors recorded during execution.
func (h *Host) Errors() []error {
	return append([]error{}, h.errors...)
}

// setupConsole routes console output to the window's structured logger.
func (h *Host) setupConsole() {
	console := h.vm.NewObject()

	log := func(level slog.Level) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			h.logger.Log(context.Background(), level, formatArgs(call.Arguments), "source", "console")
			return goja.Undefined()
		}
	}

	console.Set("log", log(slog.LevelInfo))
	console.Set("info", log(slog.LevelInfo))
	console.Set("debug", log(slog.LevelDebug))
	console.Set("warn", log(slog.LevelWarn))
	console.Set("error", log(slog.LevelError))

	h.vm.Set("console", console)
}

// setupTimers bridges setTimeout/setInterval to the window's ledger-tracked
// timers, so script-scheduled work counts toward WaitUntilComplete.
func (h *Host) setupTimers() {
	h.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return h.vm.ToValue(0)
		}
		delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		id := h.win.SetTimeout(func() {
			_, _ = callback(goja.Undefined())
		}, delay)
		return h.vm.ToValue(id)
	})

	h.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return h.vm.ToValue(0)
		}
		interval := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		id := h.win.SetInterval(func() {
			_, _ = callback(goja.Undefined())
		}, interval)
		return h.vm.ToValue(id)
	})

	clear := func(call goja.FunctionCall) goja.Value {
		h.win.ClearTimer(int(call.Argument(0).ToInteger()))
		return goja.Undefined()
	}
	h.vm.Set("clearTimeout", clear)
	h.vm.Set("clearInterval", clear)

	h.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		h.win.QueueMicrotask(func() {
			_, _ = callback(goja.Undefined())
		})
		return goja.Undefined()
	})
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
