package httpx

import (
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// Client abstracts the HTTP transport so external API calls can be mocked
// in tests. *http.Client satisfies it.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient returns a plain HTTP client with a sane default timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
