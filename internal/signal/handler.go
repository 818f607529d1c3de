// Package signal provides graceful shutdown handling for long-running
// hive commands.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Handler cancels its context when SIGINT or SIGTERM arrives. The first
// signal requests a graceful stop; callers can check WasInterrupted to
// distinguish an operator interrupt from an ordinary context cancel.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelFunc
	sigs        chan os.Signal
	done        chan struct{}
	interrupted atomic.Bool
	stopOnce    sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. Call Stop when
// done to release the signal registration.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:    ctx,
		cancel: cancel,
		// Buffered so a signal arriving mid-handle is not dropped.
		sigs: make(chan os.Signal, 1),
		done: make(chan struct{}),
	}

	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context returns the cancellable context. Use it for every operation
// that should stop on interrupt.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// WasInterrupted reports whether a signal triggered the cancellation.
func (h *Handler) WasInterrupted() bool {
	return h.interrupted.Load()
}

// Stop releases the signal registration and cancels the context.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigs)
		close(h.done)
		h.cancel()
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.done:
			return
		case <-h.ctx.Done():
			return
		case <-h.sigs:
			// Later signals land here too and are ignored; the first
			// one already requested the stop.
			h.interrupted.Store(true)
			h.cancel()
		}
	}
}
