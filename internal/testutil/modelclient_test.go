package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/domain"
)

func TestStubModelClient_ScriptedResponses(t *testing.T) {
	t.Parallel()

	stub := &StubModelClient{
		Responses: []*domain.MessageResponse{
			TextResponse("first", 10, 20),
			TextResponse("second", 30, 40),
		},
	}
	ctx := context.Background()

	resp, err := stub.CreateMessage(ctx, domain.MessageRequest{Prompt: "a"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)

	resp, err = stub.CreateMessage(ctx, domain.MessageRequest{Prompt: "b"})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)

	// The last response repeats once the script runs out.
	resp, err = stub.CreateMessage(ctx, domain.MessageRequest{Prompt: "c"})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)

	assert.Equal(t, 3, stub.Calls())
	assert.Len(t, stub.Requests, 3)
}

func TestStubModelClient_Error(t *testing.T) {
	t.Parallel()

	stub := &StubModelClient{Err: ErrMockModelCall}
	_, err := stub.CreateMessage(context.Background(), domain.MessageRequest{})
	require.ErrorIs(t, err, ErrMockModelCall)
}

func TestStubModelClient_EmptyScript(t *testing.T) {
	t.Parallel()

	stub := &StubModelClient{}
	resp, err := stub.CreateMessage(context.Background(), domain.MessageRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
}
