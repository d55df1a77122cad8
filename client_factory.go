package hyzhttp

import (
	"net/http"
	"sync"
	"time"
)

// DefaultClientFactory hands out pooled *http.Client instances keyed by name.
// A client is built once per name and reused afterwards, so connection pools
// survive across calls. The empty name is the default client.
type DefaultClientFactory struct {
	timeout time.Duration

	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewDefaultClientFactory creates a factory whose clients carry the given
// request timeout.
func NewDefaultClientFactory(timeout time.Duration) *DefaultClientFactory {
	return &DefaultClientFactory{
		timeout: timeout,
		clients: make(map[string]*http.Client),
	}
}

// CreateClient implements ClientFactory.
func (f *DefaultClientFactory) CreateClient(name string) *http.Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client
	}
	client := &http.Client{Timeout: f.timeout}
	f.clients[name] = client
	return client
}
