package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalHandler cancels a context on SIGINT/SIGTERM. Per the resolved Open
// Question in SPEC_FULL.md §4.10, an OS signal is an ordinary cooperative
// terminate, never the evacuation sequence — only the operator's '7' key
// (the dashboard in internal/cli/tui, or a "7" line on plain stdin) triggers
// evacuation.
type SignalHandler struct {
	signals chan os.Signal
	cancel  context.CancelFunc
	stopCh  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSignalHandler creates a handler that calls cancel on the first
// SIGINT/SIGTERM it observes.
func NewSignalHandler(cancel context.CancelFunc) *SignalHandler {
	return &SignalHandler{
		signals: make(chan os.Signal, 1),
		cancel:  cancel,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins listening for SIGINT/SIGTERM.
func (h *SignalHandler) Start() {
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer close(h.done)
		select {
		case <-h.signals:
			h.cancel()
		case <-h.stopCh:
		}
	}()
}

// Stop stops listening and releases the signal channel.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	h.once.Do(func() { close(h.stopCh) })
	<-h.done
}
