// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// FaultKind distinguishes the two host-runtime fault sources.
type FaultKind string

const (
	// FaultPanic is a recovered panic (the uncaught-error analog).
	FaultPanic FaultKind = "panic"

	// FaultGoroutine is an error escaping a background goroutine (the
	// unhandled-rejection analog).
	FaultGoroutine FaultKind = "goroutine"
)

// Fault is one captured runtime fault.
type Fault struct {
	Kind    FaultKind
	Message string
	Stack   string
	Source  string
}

// FaultHandler consumes captured faults.
type FaultHandler func(f Fault)

// FaultDispatcher is the single registration point between host-runtime
// fault capture and its observers. Adapters (the HTTP recoverer
// middleware, the Go goroutine wrapper) dispatch into it; the logger
// registers itself once at construction time via ObserveFaults.
type FaultDispatcher struct {
	mu       sync.RWMutex
	handlers []FaultHandler
}

// NewFaultDispatcher creates an empty dispatcher.
func NewFaultDispatcher() *FaultDispatcher {
	return &FaultDispatcher{}
}

// OnUncaught registers a handler for every subsequently dispatched fault.
func (d *FaultDispatcher) OnUncaught(h FaultHandler) {
	d.mu.Lock()
	d.handlers = append(d.handlers, h)
	d.mu.Unlock()
}

// Dispatch delivers the fault to all registered handlers. A panicking
// handler is swallowed; fault capture must never create new faults.
func (d *FaultDispatcher) Dispatch(f Fault) {
	d.mu.RLock()
	handlers := d.handlers
	d.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() { _ = recover() }()
			h(f)
		}()
	}
}

// ObserveFaults subscribes the logger to the dispatcher. Panics become
// ERROR "Global Error" entries, background-goroutine errors become
// ERROR "Unhandled Promise Rejection" entries, both carrying the
// message, stack, and source location in the payload.
func (l *Logger) ObserveFaults(d *FaultDispatcher) {
	d.OnUncaught(func(f Fault) {
		category := CategoryGlobalError
		if f.Kind == FaultGoroutine {
			category = CategoryUnhandledRejection
		}
		l.Error(context.Background(), category, f.Message, map[string]interface{}{
			"stack":  f.Stack,
			"source": f.Source,
		}, "")
	})
}

// Go runs fn on a new goroutine, converting a panic or a returned error
// into a dispatched fault. Background services use this instead of the
// bare go statement so escaped failures still reach the diagnostic log.
func Go(d *FaultDispatcher, source string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.Dispatch(Fault{
					Kind:    FaultPanic,
					Message: fmt.Sprintf("%v", r),
					Stack:   string(debug.Stack()),
					Source:  source,
				})
			}
		}()
		if err := fn(); err != nil {
			// Still on the failing goroutine's stack here.
			d.Dispatch(Fault{
				Kind:    FaultGoroutine,
				Message: err.Error(),
				Stack:   string(debug.Stack()),
				Source:  source,
			})
		}
	}()
}
