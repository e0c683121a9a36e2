package relayq

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestOptionsApply(t *testing.T) {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	client := New("https://api.example.com",
		WithMaxAttempts(5),
		WithBackoff(50*time.Millisecond),
		WithConcurrency(2),
		WithCacheTTL(10*time.Second),
		WithCacheMaxEntries(100),
		WithHTTPClient(httpClient),
		WithHeader("X-Api-Key", "k"),
		WithAuthToken("tok"),
	)
	defer client.Close()

	if client.maxAttempts != 5 {
		t.Errorf("expected maxAttempts=5, got %d", client.maxAttempts)
	}
	if client.baseBackoff != 50*time.Millisecond {
		t.Errorf("expected baseBackoff=50ms, got %v", client.baseBackoff)
	}
	if client.concurrency != 2 {
		t.Errorf("expected concurrency=2, got %d", client.concurrency)
	}
	if client.cacheTTL != 10*time.Second {
		t.Errorf("expected cacheTTL=10s, got %v", client.cacheTTL)
	}
	if client.httpClient != httpClient {
		t.Error("expected custom HTTP client")
	}
	if client.defaultHeaders["X-Api-Key"] != "k" {
		t.Error("expected default header to be set")
	}
	if client.authToken != "tok" {
		t.Error("expected initial auth token to be set")
	}
}

func TestWithDefaultHeadersMerges(t *testing.T) {
	client := New("https://api.example.com",
		WithDefaultHeaders(map[string]string{"A": "1"}),
		WithDefaultHeaders(map[string]string{"B": "2"}),
	)
	defer client.Close()

	if client.defaultHeaders["A"] != "1" || client.defaultHeaders["B"] != "2" {
		t.Errorf("expected merged headers, got %v", client.defaultHeaders)
	}
}

func TestWithoutCache(t *testing.T) {
	client := New("https://api.example.com", WithoutCache())
	defer client.Close()

	if client.cache != nil {
		t.Error("expected nil cache")
	}
	if !client.IsValid() {
		t.Errorf("expected disabled cache to skip TTL validation, got %v", client.ValidationError())
	}
}

func TestWithCustomCache(t *testing.T) {
	custom := NewInMemoryCache(10, 0)
	client := New("https://api.example.com", WithCustomCache(custom))
	defer client.Close()

	if client.cache != Cache(custom) {
		t.Error("expected the supplied cache to be used")
	}
}

func TestValidateConfiguration(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		options []Option
		problem string
	}{
		{"empty base URL", "", nil, "base URL"},
		{"zero attempts", "https://x", []Option{WithMaxAttempts(0)}, "maxAttempts"},
		{"negative backoff", "https://x", []Option{WithBackoff(-time.Second)}, "backoff"},
		{"zero concurrency", "https://x", []Option{WithConcurrency(0)}, "concurrency"},
		{"zero cache ttl", "https://x", []Option{WithCacheTTL(0)}, "cache TTL"},
		{"negative max entries", "https://x", []Option{WithCacheMaxEntries(-1)}, "max entries"},
		{"negative sweep", "https://x", []Option{WithCacheCleanupInterval(-time.Second)}, "cleanup interval"},
		{"nil http client", "https://x", []Option{WithHTTPClient(nil)}, "HTTP client"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := New(tc.baseURL, tc.options...)
			defer client.Close()

			if client.IsValid() {
				t.Fatal("expected invalid configuration")
			}
			err := client.ValidationError()
			if !IsValidation(err) {
				t.Errorf("expected validation kind, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.problem) {
				t.Errorf("expected %q in %q", tc.problem, err.Error())
			}
		})
	}
}

func TestValidateConfigurationCollectsAllProblems(t *testing.T) {
	client := New("", WithMaxAttempts(0), WithConcurrency(-1))
	defer client.Close()

	err := client.ValidationError()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"base URL", "maxAttempts", "concurrency"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestWithBackoffStrategy(t *testing.T) {
	linear := New("https://x", WithBackoffStrategy(BackoffLinear))
	defer linear.Close()
	exponential := New("https://x", WithBackoffStrategy(BackoffExponential))
	defer exponential.Close()

	base := 100 * time.Millisecond
	if got := linear.backoffCalc.Delay(2, base); got != 300*time.Millisecond {
		t.Errorf("expected linear delay 300ms at attempt 2, got %v", got)
	}
	if got := exponential.backoffCalc.Delay(2, base); got != 400*time.Millisecond {
		t.Errorf("expected exponential delay 400ms at attempt 2, got %v", got)
	}
}

func TestWithDebugConfig(t *testing.T) {
	cfg := &DebugConfig{Enabled: true, LogRetries: true}
	client := New("https://x", WithDebugConfig(cfg), WithLogger(NewSimpleLogger()))
	defer client.Close()

	if !client.debugEnabled() {
		t.Error("expected debug to be enabled")
	}
	if client.debug.LogCache {
		t.Error("expected custom config to be used verbatim")
	}
}
