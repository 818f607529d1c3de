package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled")
	}
}

func TestHandler_SignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	// Inject directly instead of raising a real OS signal.
	h.sigs <- nil

	waitDone(t, h.Context())
	assert.True(t, h.WasInterrupted())
}

func TestHandler_StopCancelsWithoutInterrupt(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()

	waitDone(t, h.Context())
	assert.False(t, h.WasInterrupted())
}

func TestHandler_ParentCancelPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()
	waitDone(t, h.Context())
	assert.False(t, h.WasInterrupted())
}

func TestHandler_StopIsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())
	require.NotPanics(t, func() {
		h.Stop()
		h.Stop()
	})
}
