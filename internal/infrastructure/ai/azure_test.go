package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/doeshing/rai-go/internal/domain"
)

func testSettings(endpoint string) domain.AzureSettings {
	return domain.AzureSettings{
		Endpoint:   endpoint,
		Deployment: "gpt-test",
		APIVersion: "2025-01-01-preview",
		APIKey:     "secret",
	}
}

func completionRequest() domain.CompletionRequest {
	temperature := 0.2
	return domain.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "sys"},
			{Role: domain.RoleUser, Content: "hello"},
		},
		Temperature:     &temperature,
		MaxOutputTokens: 500,
	}
}

func TestClientComplete(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	var gotBody chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "world"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	text, err := client.Complete(context.Background(), completionRequest())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "world" {
		t.Errorf("text = %q", text)
	}

	if gotPath != "/openai/deployments/gpt-test/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "api-version=2025-01-01-preview") {
		t.Errorf("query = %q", gotQuery)
	}
	if gotKey != "secret" {
		t.Errorf("api-key header = %q", gotKey)
	}
	if gotBody.Temperature == nil || *gotBody.Temperature != 0.2 {
		t.Errorf("temperature not sent: %v", gotBody.Temperature)
	}
	if gotBody.MaxCompletionTokens != 500 {
		t.Errorf("max_completion_tokens = %d", gotBody.MaxCompletionTokens)
	}
}

func TestClientCompleteOmitsDroppedParameters(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	req := domain.CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	}
	if _, err := client.Complete(context.Background(), req); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, present := raw["temperature"]; present {
		t.Error("dropped temperature must not appear in the request body")
	}
	if _, present := raw["max_completion_tokens"]; present {
		t.Error("unset max tokens must not appear in the request body")
	}
}

func TestClientCompleteSurfacesAPIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":    "unsupported_parameter",
				"message": "Unsupported parameter: 'max_tokens' is not supported with this model.",
			},
		})
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	_, err := client.Complete(context.Background(), completionRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Unsupported parameter: 'max_tokens'") {
		t.Errorf("upstream message not surfaced verbatim: %v", err)
	}
}

func TestClientCompleteMissingCredentials(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.AzureSettings
		want     string
	}{
		{
			name:     "missing endpoint",
			settings: domain.AzureSettings{Deployment: "d", APIKey: "k"},
			want:     "endpoint",
		},
		{
			name:     "missing api key",
			settings: domain.AzureSettings{Endpoint: "https://x.openai.azure.com/", Deployment: "d"},
			want:     "AZURE_OPENAI_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.settings)
			_, err := client.Complete(context.Background(), completionRequest())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
