package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deckfort/cardtable-engine-go/src/http"
)

// testConfig keeps backoff delays short.
func testConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
	}
}

// sequenceClient returns canned responses in order, repeating the last one.
type sequenceClient struct {
	responses []*http.Response
	errs      []error
	calls     int
}

func (c *sequenceClient) Get(ctx context.Context, url string) (*http.Response, error) {
	i := c.calls
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.calls++
	return c.responses[i], c.errs[i]
}

func TestGet_Success(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetBody("http://example.com", []byte("success"))

	resp, err := Get(context.Background(), client, "http://example.com", testConfig())
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if client.CallCount("http://example.com") != 1 {
		t.Errorf("made %d calls, want 1", client.CallCount("http://example.com"))
	}
}

func TestGet_ServerErrorThenSuccess(t *testing.T) {
	client := &sequenceClient{
		responses: []*http.Response{
			{StatusCode: 500},
			{StatusCode: 200, Body: []byte("recovered")},
		},
		errs: []error{nil, nil},
	}

	resp, err := Get(context.Background(), client, "http://example.com", testConfig())
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if client.calls != 2 {
		t.Errorf("made %d calls, want 2", client.calls)
	}
}

func TestGet_NetworkErrorThenSuccess(t *testing.T) {
	client := &sequenceClient{
		responses: []*http.Response{
			nil,
			{StatusCode: 200},
		},
		errs: []error{errors.New("connection refused"), nil},
	}

	resp, err := Get(context.Background(), client, "http://example.com", testConfig())
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestGet_ClientErrorDoesNotRetry(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetResponse("http://example.com", &http.Response{StatusCode: 404})

	resp, err := Get(context.Background(), client, "http://example.com", testConfig())
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want the 404 passed through", resp.StatusCode)
	}
	if client.CallCount("http://example.com") != 1 {
		t.Errorf("made %d calls, want 1; 4xx must not retry", client.CallCount("http://example.com"))
	}
}

func TestGet_ExhaustsAttempts(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetError("http://example.com", errors.New("connection refused"))

	_, err := Get(context.Background(), client, "http://example.com", testConfig())
	if err == nil {
		t.Fatal("Get() expected error after exhausting attempts")
	}
	if client.CallCount("http://example.com") != 3 {
		t.Errorf("made %d calls, want 3", client.CallCount("http://example.com"))
	}
}

func TestGet_RateLimitExhaustionReturnsResponse(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetResponse("http://example.com", &http.Response{StatusCode: 429})

	resp, err := Get(context.Background(), client, "http://example.com", testConfig())
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if resp.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want the final 429", resp.StatusCode)
	}
}

func TestGet_ContextCancellation(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetResponse("http://example.com", &http.Response{StatusCode: 500})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := testConfig()
	config.InitialDelay = 10 * time.Second

	_, err := Get(ctx, client, "http://example.com", config)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

func TestRetryDelay(t *testing.T) {
	config := Config{
		InitialDelay: 1 * time.Second,
		MaxDelay:     8 * time.Second,
	}

	tests := []struct {
		name    string
		resp    *http.Response
		attempt int
		want    time.Duration
	}{
		{"First attempt", nil, 1, 1 * time.Second},
		{"Second attempt doubles", nil, 2, 2 * time.Second},
		{"Capped at max", nil, 10, 8 * time.Second},
		{
			"Retry-After honoured",
			&http.Response{StatusCode: 429, Headers: map[string]string{"Retry-After": "3"}},
			1,
			3 * time.Second,
		},
		{
			"Retry-After capped at max",
			&http.Response{StatusCode: 429, Headers: map[string]string{"Retry-After": "60"}},
			1,
			8 * time.Second,
		},
		{
			"Junk Retry-After falls back to backoff",
			&http.Response{StatusCode: 429, Headers: map[string]string{"Retry-After": "soon"}},
			1,
			1 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryDelay(tt.resp, tt.attempt, config); got != tt.want {
				t.Errorf("retryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
		err  error
		want bool
	}{
		{"Network error", nil, errors.New("boom"), true},
		{"Rate limited", &http.Response{StatusCode: 429}, nil, true},
		{"Server error", &http.Response{StatusCode: 503}, nil, true},
		{"Not found", &http.Response{StatusCode: 404}, nil, false},
		{"Success", &http.Response{StatusCode: 200}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.resp, tt.err); got != tt.want {
				t.Errorf("shouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}
