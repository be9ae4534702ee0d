package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruralcyberguard/internal/llm"
)

type completerFunc func(ctx context.Context, system, message string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, message string) (string, error) {
	return f(ctx, system, message)
}

func newChat(t *testing.T, apiKey string, up *upstream) (*ChatHandler, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig(t, map[string]string{
		"LLM_API_KEY":         apiKey,
		"HUMAN_CONTACT_PHONE": "01000 000000",
		"HUMAN_CONTACT_EMAIL": "team@example.test",
	})
	logger, buf := testLogger()
	var c llm.Completer
	if up != nil {
		c = llm.NewOpenAIClient(up.URL(), apiKey, cfg.Chat.Model, cfg.Chat.MaxTokens, cfg.Chat.Timeout)
	}
	return NewChatHandler(cfg, c, logger), buf
}

func TestChatPreflight(t *testing.T) {
	h, _ := newChat(t, "key", nil)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodOptions, `{"message":"ignored"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "GET, POST, OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "Content-Type", resp.Headers["Access-Control-Allow-Headers"])
	assert.Empty(t, resp.Body)
}

func TestChatEmptyMessageGreets(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"unused"}}]}`)
	h, _ := newChat(t, "key", up)

	for _, body := range []string{`{"message":"   "}`, `{}`, ``, `not json`, `{"message":42}`} {
		resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, body))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Equal(t, h.greeting, decodeResp(t, resp)["reply"], body)
	}
	assert.Zero(t, up.Count())
}

func TestChatGetGreets(t *testing.T) {
	h, _ := newChat(t, "key", nil)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodGet, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, h.greeting, decodeResp(t, resp)["reply"])
	assert.Contains(t, h.greeting, "Rural Cyber Guard")
}

func TestChatUnconfigured(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"unused"}}]}`)
	h, logs := newChat(t, "", up)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"Is my router safe?"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decodeResp(t, resp)["reply"].(string)
	assert.Contains(t, reply, "isn't fully configured")
	assert.Contains(t, reply, "01000 000000")
	assert.Contains(t, reply, "team@example.test")
	assert.Zero(t, up.Count())
	assert.Contains(t, logs.String(), "llm not configured")
}

func TestChatUpstreamError(t *testing.T) {
	up := newUpstream(t, http.StatusInternalServerError, `{"error":{"message":"overloaded"}}`)
	h, logs := newChat(t, "key", up)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"Help with phishing"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decodeResp(t, resp)["reply"].(string)
	assert.Contains(t, reply, "trouble talking to the AI service")
	assert.Contains(t, reply, "team@example.test")
	assert.Equal(t, 1, up.Count())
	assert.Contains(t, logs.String(), `"status":500`)
	assert.Contains(t, logs.String(), "overloaded")
}

func TestChatUpstreamUnreachable(t *testing.T) {
	up := newUpstream(t, http.StatusOK, "")
	h, _ := newChat(t, "key", up)
	up.server.Close()

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"hello"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decodeResp(t, resp)["reply"], "something went wrong")
}

func TestChatMalformedResponse(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `<html>gateway</html>`)
	h, _ := newChat(t, "key", up)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"hello"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decodeResp(t, resp)["reply"], "something went wrong")
}

func TestChatMissingContentSubstitutes(t *testing.T) {
	for _, body := range []string{`{"choices":[]}`, `{"choices":[{"message":{}}]}`, `{}`} {
		up := newUpstream(t, http.StatusOK, body)
		h, _ := newChat(t, "key", up)

		resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"hello"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Equal(t, replyNoContent, decodeResp(t, resp)["reply"], body)
	}
}

func TestChatSuccess(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Hello farmer"}}]}`)
	h, _ := newChat(t, "secret-key", up)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"  Hi there  "}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"reply":"Hello farmer"}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	require.Equal(t, 1, up.Count())
	got := up.Last(t)
	assert.Equal(t, "/v1/chat/completions", got.Path)
	assert.Equal(t, "Bearer secret-key", got.Header.Get("Authorization"))

	var payload struct {
		Model    string        `json:"model"`
		Messages []llm.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(got.Body, &payload))
	assert.Equal(t, "gpt-4o-mini", payload.Model)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "system", payload.Messages[0].Role)
	assert.Equal(t, h.cfg.Persona(), payload.Messages[0].Content)
	assert.Equal(t, llm.Message{Role: "user", Content: "Hi there"}, payload.Messages[1])
}

func TestChatEveryRungReturns200(t *testing.T) {
	cfg := testConfig(t, map[string]string{"LLM_API_KEY": "key"})
	logger, _ := testLogger()

	completers := map[string]llm.Completer{
		"success":   completerFunc(func(context.Context, string, string) (string, error) { return "ok", nil }),
		"status":    completerFunc(func(context.Context, string, string) (string, error) { return "", &llm.StatusError{StatusCode: 429} }),
		"nocontent": completerFunc(func(context.Context, string, string) (string, error) { return "", llm.ErrNoContent }),
		"panic":     completerFunc(func(context.Context, string, string) (string, error) { panic("boom") }),
	}
	for name, c := range completers {
		h := NewChatHandler(cfg, c, logger)
		resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"q"}`))
		require.NoError(t, err, name)
		assert.Equal(t, http.StatusOK, resp.StatusCode, name)
		assert.NotEmpty(t, decodeResp(t, resp)["reply"], name)
	}
}

func TestChatPanicUsesUnexpectedReply(t *testing.T) {
	cfg := testConfig(t, map[string]string{"LLM_API_KEY": "key"})
	logger, buf := testLogger()
	h := NewChatHandler(cfg, completerFunc(func(context.Context, string, string) (string, error) { panic("boom") }), logger)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"q"}`))
	require.NoError(t, err)
	assert.Equal(t, h.replyUnexpected, decodeResp(t, resp)["reply"])
	assert.Contains(t, buf.String(), "panic: boom")
}

func TestChatUnknownProviderFallsBack(t *testing.T) {
	cfg := testConfig(t, map[string]string{"LLM_PROVIDER": "azure", "LLM_API_KEY": "key"})
	logger, _ := testLogger()
	called := false
	h := NewChatHandler(cfg, completerFunc(func(context.Context, string, string) (string, error) {
		called = true
		return "unused", nil
	}), logger)

	resp, err := h.Handle(context.Background(), apiRequest(http.MethodPost, `{"message":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, h.replyUnconfig, decodeResp(t, resp)["reply"])
	assert.False(t, called)
}
