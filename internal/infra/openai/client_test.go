package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateChatCompletion(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("неожиданный запрос %s с заголовком %q", r.URL.Path, r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer srv.Close()

	client := NewClient("key", srv.URL+"/", time.Second)
	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:     "gpt-4o-mini",
		Messages:  []ChatMessage{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if resp.Text() != "hello" {
		t.Fatalf("неожиданный текст %q", resp.Text())
	}
	if got.MaxTokens != 100 || got.Messages[0].Content != "hi" {
		t.Fatalf("тело запроса передано неверно: %+v", got)
	}
}

func TestCreateChatCompletionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer srv.Close()

	_, err := NewClient("key", srv.URL, time.Second).CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusTooManyRequests || statusErr.Message != "rate limit" {
		t.Fatalf("ожидали StatusError 429, получили %v", err)
	}

	_, err = NewClient("", srv.URL, time.Second).CreateChatCompletion(context.Background(), ChatCompletionRequest{})
	if !errors.Is(err, ErrEmptyAPIKey) {
		t.Fatalf("ожидали ErrEmptyAPIKey, получили %v", err)
	}
}

func TestTextWithoutChoices(t *testing.T) {
	if (ChatCompletionResponse{}).Text() != "" {
		t.Fatalf("пустой ответ должен давать пустой текст")
	}
}
