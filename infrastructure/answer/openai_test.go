package answer_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/infrastructure/answer"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

func newCompletionServer(t *testing.T, captured *capturedRequest, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   captured.Model,
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": reply}, "finish_reason": "stop"}},
		})
	}))
}

func TestOpenAI_Question(t *testing.T) {
	var captured capturedRequest
	srv := newCompletionServer(t, &captured, "Ответ на второй странице")
	defer srv.Close()

	a := answer.NewOpenAI(srv.URL, "test-key", "gpt-4o", time.Second, nil)

	got, err := a.Question(context.Background(), "где график", [][]byte{[]byte("img-a"), []byte("img-b")})
	require.NoError(t, err)
	assert.Equal(t, "Ответ на второй странице", got)

	assert.Equal(t, "gpt-4o", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)

	var parts []contentPart
	require.NoError(t, json.Unmarshal(captured.Messages[1].Content, &parts))
	require.Len(t, parts, 3)

	// Images first, in the caller's order, then the instruction text.
	assert.Equal(t, "image_url", parts[0].Type)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("img-a")), parts[0].ImageURL.URL)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("img-b")), parts[1].ImageURL.URL)

	assert.Equal(t, "text", parts[2].Type)
	assert.Contains(t, parts[2].Text, "где график")
	assert.Contains(t, parts[2].Text, "К сожелению, у меня нет ответа")
	assert.Contains(t, parts[2].Text, "Answer in Russian language")
}

func TestOpenAI_Question_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := answer.NewOpenAI(srv.URL, "test-key", "gpt-4o", time.Second, nil)

	_, err := a.Question(context.Background(), "q", nil)
	require.Error(t, err)
}
