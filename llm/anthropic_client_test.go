package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SaiNageswarS/threads-poster/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     "test-key",
		httpClient: server.Client(),
		url:        server.URL,
	}
}

func TestProvideAnthropicClient_MissingAPIKey(t *testing.T) {
	client, err := ProvideAnthropicClient("", time.Second)
	assert.Nil(t, client)
	assert.EqualError(t, err, "anthropic api key is not set")
}

func TestProvideAnthropicClient_Success(t *testing.T) {
	client, err := ProvideAnthropicClient("test-key", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, anthropicURL, client.url)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestGenerateInference_Success(t *testing.T) {
	var received AnthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [
				{"type": "text", "text": " Quiet mornings, "},
				{"type": "tool_use"},
				{"type": "text", "text": "loud dreams ☀️ "}
			],
			"id": "msg_1", "model": "claude-test", "role": "assistant", "type": "message"
		}`))
	}))
	defer server.Close()

	messages := []Message{UserMessage(TextBlock("describe"), ImageBlock("image/png", "aGVsbG8="))}
	text, err := async.Await(newTestClient(server).GenerateInference(context.Background(), messages,
		WithLLMModel("claude-test"), WithMaxTokens(50), WithTemperature(0.2), WithSystemPrompt("be brief")))

	require.NoError(t, err)
	assert.Equal(t, "Quiet mornings, loud dreams ☀️", text)

	assert.Equal(t, "claude-test", received.Model)
	assert.Equal(t, 50, received.MaxTokens)
	assert.Equal(t, 0.2, received.Temperature)
	assert.Equal(t, "be brief", received.System)
	require.Len(t, received.Messages, 1)
	require.Len(t, received.Messages[0].Content, 2)
	assert.Equal(t, "image", received.Messages[0].Content[1].Type)
	assert.Equal(t, "base64", received.Messages[0].Content[1].Source.Type)
	assert.Equal(t, "image/png", received.Messages[0].Content[1].Source.MediaType)
}

func TestGenerateInference_BadStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	_, err := async.Await(newTestClient(server).GenerateInference(context.Background(), []Message{UserMessage(TextBlock("hi"))}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestGenerateInference_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not-json"))
	}))
	defer server.Close()

	_, err := async.Await(newTestClient(server).GenerateInference(context.Background(), []Message{UserMessage(TextBlock("hi"))}))
	assert.Error(t, err)
}

func TestGenerateInference_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "   "}], "id": "msg_2"}`))
	}))
	defer server.Close()

	_, err := async.Await(newTestClient(server).GenerateInference(context.Background(), []Message{UserMessage(TextBlock("hi"))}))
	assert.True(t, errors.Is(err, ErrNoContent), "got %v", err)
}

func TestGenerateInference_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release) // runs before Close so the handler can return

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := async.Await(newTestClient(server).GenerateInference(ctx, []Message{UserMessage(TextBlock("hi"))}))
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("GenerateInference did not return after the context deadline")
	}
}
