package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeOllama is a minimal in-test Ollama daemon.
type fakeOllama struct {
	mu sync.Mutex

	models        []string
	failModels    map[string]bool
	response      string
	embedDim      int
	generateCalls []string // models in request order
	prompts       []string
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/version", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"version": "0.5.0"})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		type model struct {
			Name string `json:"name"`
		}
		models := make([]model, len(f.models))
		for i, name := range f.models {
			models[i] = model{Name: name}
		}
		json.NewEncoder(w).Encode(map[string]any{"models": models})
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		embedding := make([]float32, f.embedDim)
		for i := range embedding {
			embedding[i] = 0.1
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": embedding})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.generateCalls = append(f.generateCalls, req.Model)
		f.prompts = append(f.prompts, req.Prompt)
		failing := f.failModels[req.Model]
		f.mu.Unlock()

		if failing {
			http.Error(w, "model crashed", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": f.response})
	})
	return mux
}

func newFakeOllama(t *testing.T, daemon *fakeOllama) *Ollama {
	t.Helper()
	srv := httptest.NewServer(daemon.handler())
	t.Cleanup(srv.Close)
	return NewOllama(OllamaConfig{BaseURL: srv.URL})
}

func TestOllamaAvailable(t *testing.T) {
	tests := []struct {
		name   string
		models []string
		want   bool
	}{
		{"both models pulled", []string{"nomic-embed-text:latest", "llama3.2:3b"}, true},
		{"missing text model", []string{"nomic-embed-text:latest"}, false},
		{"missing embed model", []string{"llama3.2:3b"}, false},
		{"no models", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newFakeOllama(t, &fakeOllama{models: tt.models})
			if got := o.Available(context.Background()); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOllamaAvailableDaemonDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL})
	if o.Available(context.Background()) {
		t.Error("Available() = true against a dead daemon")
	}
}

func TestOllamaEmbedPerText(t *testing.T) {
	o := newFakeOllama(t, &fakeOllama{embedDim: 4})

	vectors, err := o.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	for i, v := range vectors {
		if len(v) != 4 {
			t.Errorf("vectors[%d] has dimension %d, want 4", i, len(v))
		}
	}
}

func TestOllamaGeneratePromptTemplate(t *testing.T) {
	daemon := &fakeOllama{response: "Thirty days."}
	o := newFakeOllama(t, daemon)

	answer, err := o.Generate(context.Background(), "What is the grace period?", "The grace period is thirty days.")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "Thirty days." {
		t.Errorf("answer = %q", answer)
	}

	prompt := daemon.prompts[0]
	if !strings.Contains(prompt, "Context: The grace period is thirty days.") {
		t.Errorf("prompt missing context block: %q", prompt)
	}
	if !strings.Contains(prompt, "Be concise and specific.") {
		t.Errorf("prompt missing instruction: %q", prompt)
	}
}

func TestOllamaGenerateNoContextPassesQuestionThrough(t *testing.T) {
	daemon := &fakeOllama{response: "ok"}
	o := newFakeOllama(t, daemon)

	if _, err := o.Generate(context.Background(), "bare question", ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if daemon.prompts[0] != "bare question" {
		t.Errorf("prompt = %q, want bare question", daemon.prompts[0])
	}
}

func TestOllamaGenerateFallsBackToSmallerModel(t *testing.T) {
	daemon := &fakeOllama{
		response:   "Answer from the fallback.",
		failModels: map[string]bool{"llama3.2:3b": true},
	}
	o := newFakeOllama(t, daemon)

	answer, err := o.Generate(context.Background(), "q", "c")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "Answer from the fallback." {
		t.Errorf("answer = %q", answer)
	}
	want := []string{"llama3.2:3b", "llama3.2:1b"}
	if fmt.Sprint(daemon.generateCalls) != fmt.Sprint(want) {
		t.Errorf("models tried = %v, want %v", daemon.generateCalls, want)
	}
}

func TestOllamaGenerateAllModelsFail(t *testing.T) {
	daemon := &fakeOllama{
		failModels: map[string]bool{"llama3.2:3b": true, "llama3.2:1b": true},
	}
	o := newFakeOllama(t, daemon)

	if _, err := o.Generate(context.Background(), "q", "c"); err == nil {
		t.Fatal("Generate() error = nil, want failure when every model fails")
	}
}
