package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is the URL-to-bytes download primitive the loader and image
// cache depend on. Kept narrow so tests can substitute a mock.
type HTTPClient interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Response wraps HTTP response data.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RealHTTPClient implements HTTPClient using net/http.
type RealHTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewRealHTTPClient creates a client with the given timeout. A zero timeout
// defaults to 30 seconds.
func NewRealHTTPClient(userAgent string, timeout time.Duration) *RealHTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RealHTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Get performs an HTTP GET request.
func (c *RealHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    headers,
	}, nil
}

// MockHTTPClient implements HTTPClient for testing.
type MockHTTPClient struct {
	responses map[string]*Response
	errors    map[string]error
	calls     []string
}

// NewMockHTTPClient creates a new mock HTTP client.
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		responses: make(map[string]*Response),
		errors:    make(map[string]error),
	}
}

// SetResponse sets a mock response for a URL.
func (m *MockHTTPClient) SetResponse(url string, response *Response) {
	m.responses[url] = response
}

// SetBody sets a 200 response with the given body for a URL.
func (m *MockHTTPClient) SetBody(url string, body []byte) {
	m.responses[url] = &Response{StatusCode: 200, Body: body}
}

// SetError sets a mock error for a URL.
func (m *MockHTTPClient) SetError(url string, err error) {
	m.errors[url] = err
}

// Calls returns all URLs that were requested, in order.
func (m *MockHTTPClient) Calls() []string {
	return m.calls
}

// CallCount returns how often one URL was requested.
func (m *MockHTTPClient) CallCount(url string) int {
	n := 0
	for _, c := range m.calls {
		if c == url {
			n++
		}
	}
	return n
}

// Get returns a mock response or error.
func (m *MockHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	m.calls = append(m.calls, url)

	if err, exists := m.errors[url]; exists {
		return nil, err
	}
	if resp, exists := m.responses[url]; exists {
		return resp, nil
	}
	return nil, fmt.Errorf("no mock response configured for URL: %s", url)
}
