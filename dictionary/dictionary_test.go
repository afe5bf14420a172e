package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFromWordsContainsIsCaseInsensitive(t *testing.T) {
	s := FromWords([]string{"cat", "DOG"})
	if !s.Contains("CAT") || !s.Contains("cat") {
		t.Error("Contains should be case-insensitive for a word loaded lowercase")
	}
	if !s.Contains("dog") {
		t.Error("Contains should be case-insensitive for a word loaded uppercase")
	}
	if s.Contains("BIRD") {
		t.Error("Contains should reject words never loaded")
	}
}

func TestLoadFromHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cat\ndog\n\nbird\n"))
	}))
	defer srv.Close()

	set, err := Load(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 words loaded, got %d", set.Len())
	}
	if !set.Contains("CAT") || !set.Contains("bird") {
		t.Error("loaded words should be queryable regardless of case")
	}
}

func TestLoadFallsBackWhenEverySourceFails(t *testing.T) {
	set, err := Load(context.Background(), []string{"http://127.0.0.1:0/nonexistent"})
	if err != nil {
		t.Fatalf("Load should not return an error even when every source fails: %v", err)
	}
	if set.Len() != len(FallbackWords) {
		t.Fatalf("expected fallback set of %d words, got %d", len(FallbackWords), set.Len())
	}
	if !set.Contains("CAT") {
		t.Error("fallback set should contain the built-in words")
	}
}
