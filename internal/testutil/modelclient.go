// Package testutil provides testing utilities for hive.
//
// It contains stub collaborators and mock errors used across test
// files. It should only be imported by test files (*_test.go).
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/hiveworks/hive/internal/domain"
)

// Mock errors used to simulate collaborator failures in tests.
var (
	// ErrMockModelCall indicates a mock model transport failure.
	ErrMockModelCall = errors.New("model call failed")

	// ErrMockStoreUnavailable indicates a mock workspace store failure.
	ErrMockStoreUnavailable = errors.New("store unavailable")
)

// StubModelClient is a scripted domain.ModelClient. Responses are
// returned in order; after they run out the last one repeats. A nil
// response list with Err unset yields an empty response.
type StubModelClient struct {
	mu        sync.Mutex
	Responses []*domain.MessageResponse
	Err       error

	// Requests records every request received, in order.
	Requests []domain.MessageRequest

	calls int
}

// CreateMessage returns the next scripted response or the configured
// error.
func (s *StubModelClient) CreateMessage(_ context.Context, req domain.MessageRequest) (*domain.MessageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	s.calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Responses) == 0 {
		return &domain.MessageResponse{}, nil
	}
	idx := s.calls - 1
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	return s.Responses[idx], nil
}

// Calls reports how many times CreateMessage was invoked.
func (s *StubModelClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// TextResponse builds a minimal response carrying content and usage.
func TextResponse(content string, inputTokens, outputTokens int64) *domain.MessageResponse {
	return &domain.MessageResponse{
		Content:      content,
		Model:        "stub-model",
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		StopReason:   "end_turn",
	}
}

var _ domain.ModelClient = (*StubModelClient)(nil)
