package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-insight/internal/llm"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClientWithURL("test-key", srv.URL, 5*time.Second, "llama-3.1-8b-instant")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return srv, client
}

func successBody(model, content string) map[string]any {
	return map[string]any{
		"id":    "chatcmpl-1",
		"model": model,
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 5,
			"total_tokens":      15,
		},
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(successBody("llama-3.1-70b-versatile", `{"match_score": 80}`))
	})

	resp, err := client.Complete(context.Background(), "the prompt", llm.Options{
		Model:     "llama-3.1-70b-versatile",
		MaxTokens: 512,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotReq.Model != "llama-3.1-70b-versatile" {
		t.Fatalf("request model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "the prompt" {
		t.Fatalf("request messages = %+v", gotReq.Messages)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Fatalf("response format = %+v", gotReq.ResponseFormat)
	}

	if resp.Text != `{"match_score": 80}` {
		t.Fatalf("text = %q", resp.Text)
	}
	if resp.Model != "llama-3.1-70b-versatile" {
		t.Fatalf("model = %q", resp.Model)
	}
	if resp.TotalTokens != 15 || resp.PromptTokens != 10 || resp.CompletionTokens != 5 {
		t.Fatalf("usage = %+v", resp)
	}
	if resp.Elapsed <= 0 {
		t.Fatalf("elapsed not recorded: %v", resp.Elapsed)
	}
}

func TestCompleteProviderError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	})

	_, err := client.Complete(context.Background(), "p", llm.Options{Model: "llama-3.1-8b-instant"})
	var perr *llm.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.StatusCode != http.StatusUnauthorized || perr.Code != "invalid_api_key" {
		t.Fatalf("provider error = %+v", perr)
	}
}

func TestCompleteFallsBackOnDecommissionedModel(t *testing.T) {
	var models []string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		models = append(models, req.Model)

		w.Header().Set("Content-Type", "application/json")
		if req.Model == "llama-3.1-8b-instant" {
			_ = json.NewEncoder(w).Encode(successBody("llama-3.1-8b-instant", `{"overall_score": 70}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"The model has been decommissioned","type":"invalid_request_error","code":"model_decommissioned"}}`))
	})

	resp, err := client.Complete(context.Background(), "p", llm.Options{Model: "llama-3.1-70b-versatile"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(models) != 2 || models[0] != "llama-3.1-70b-versatile" || models[1] != "llama-3.1-8b-instant" {
		t.Fatalf("models tried = %v", models)
	}
	if resp.Model != "llama-3.1-8b-instant" {
		t.Fatalf("model = %q", resp.Model)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","model":"llama-3.1-8b-instant","choices":[]}`))
	})

	if _, err := client.Complete(context.Background(), "p", llm.Options{}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", time.Second, "llama-3.1-8b-instant")
	if !errors.Is(err, llm.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestCompleteHonorsPerCallTimeout(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	start := time.Now()
	_, err := client.Complete(context.Background(), "p", llm.Options{Timeout: 30 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("per-call timeout not applied, waited %v", time.Since(start))
	}
}

func TestCompleteHonorsCancellation(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Complete(ctx, "p", llm.Options{})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancellation did not interrupt the call")
	}
}
