// Package dictionary provides the set-membership predicate the Room
// Engine validates submitted words against. It is loaded once at
// process startup and shared, read-only, across every room: an immutable
// set-of-strings primitive with a decoupled loader so alternate sources
// compose.
package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Set is the read-only, process-wide word predicate the Validator
// depends on.
type Set interface {
	Contains(word string) bool
	// Len reports the number of distinct words loaded, for
	// diagnostics/logging only.
	Len() int
}

// wordSet is a plain map-backed Set.
type wordSet struct {
	words map[string]struct{}
}

func (w *wordSet) Contains(word string) bool {
	_, ok := w.words[strings.ToUpper(word)]
	return ok
}

func (w *wordSet) Len() int { return len(w.words) }

// FallbackWords is the tiny built-in word set used when every
// configured source fails to load, so the system still runs.
var FallbackWords = []string{
	"CAT", "DOG", "RAT", "BAT", "HAT", "CAR", "BAR", "FAR",
	"TAR", "STAR", "START", "CARS", "BARS", "TARS", "ARTS", "RATS",
	"EAT", "ATE", "TEA", "SEA", "SET", "NET", "TEN", "PEN",
	"TIN", "TIE", "NICE", "RICE", "RISE", "SIRE", "FIRE", "HIRE",
	"WIRE", "WIRES", "TIRES", "TIRE", "TIRED", "RATED", "GATE", "LATE",
	"GREAT", "TASTE", "STONE", "NOTES", "TONES", "STORE", "ROAST", "TOAST",
}

// FromWords builds a Set directly from a slice of words, uppercasing
// each. Used for the fallback set and in tests for deterministic
// dictionaries.
func FromWords(words []string) Set {
	w := &wordSet{words: make(map[string]struct{}, len(words))}
	for _, word := range words {
		w.words[strings.ToUpper(word)] = struct{}{}
	}
	return w
}

// httpTimeout bounds each source fetch so a slow or hanging remote does
// not delay startup indefinitely.
const httpTimeout = 10 * time.Second

// Load fetches each of urls (one word per line, case-insensitive) and
// unions them into a single Set. If every URL fails, it logs the
// failures and falls back to FallbackWords rather than erroring. The
// returned error is always nil; it exists so a future stricter mode can
// be layered on without changing the signature.
func Load(ctx context.Context, urls []string) (Set, error) {
	words := make(map[string]struct{})
	client := &http.Client{Timeout: httpTimeout}

	loadedAny := false
	for _, url := range urls {
		n, err := fetchInto(ctx, client, url, words)
		if err != nil {
			slog.Warn("dictionary source failed", "url", url, "error", err)
			continue
		}
		slog.Info("dictionary source loaded", "url", url, "words", n)
		loadedAny = true
	}

	if !loadedAny {
		slog.Warn("no dictionary source loaded, falling back to built-in word set", "words", len(FallbackWords))
		for _, w := range FallbackWords {
			words[strings.ToUpper(w)] = struct{}{}
		}
	}

	return &wordSet{words: words}, nil
}

func fetchInto(ctx context.Context, client *http.Client, url string, into map[string]struct{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	n := 0
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		word := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		into[word] = struct{}{}
		n++
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return n, fmt.Errorf("scan body: %w", err)
	}
	return n, nil
}
