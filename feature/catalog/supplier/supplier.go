package supplier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds configuration for the catalog suppliers.
type Config struct {
	// Source is the default supplier used when a run does not name one.
	Source string `mapstructure:"source" default:"mock"`
	// URL is the endpoint of the HTTP supplier.
	URL string `mapstructure:"url" default:""`
	// TimeoutSeconds bounds one supplier fetch.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// Fetcher retrieves one raw catalog payload from an external supplier. The
// payload is an opaque JSON array; interpretation is the normalizer's job.
type Fetcher interface {
	// Name identifies the supplier in the registry and in logs.
	Name() string
	// Fetch retrieves the raw payload.
	Fetch(ctx context.Context) ([]byte, error)
}

// Registry maps supplier names to fetchers. It is built once at startup;
// lookups at request time never mutate it.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Register adds a fetcher under its own name, replacing any previous one.
func (r *Registry) Register(f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[f.Name()] = f
}

// Lookup returns the fetcher registered under name.
func (r *Registry) Lookup(name string) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[name]
	if !ok {
		return nil, fmt.Errorf("unknown supplier %q", name)
	}
	return f, nil
}

// Names lists the registered supplier names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HTTPSupplier fetches the catalog payload from a remote endpoint.
type HTTPSupplier struct {
	name   string
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPSupplier(name, url string, timeout time.Duration, logger *zap.Logger) *HTTPSupplier {
	return &HTTPSupplier{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (s *HTTPSupplier) Name() string { return s.name }

func (s *HTTPSupplier) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supplier %s fetch failed: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supplier %s returned status %d", s.name, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supplier %s read failed: %w", s.name, err)
	}

	s.logger.Info("Supplier payload fetched",
		zap.String("supplier", s.name),
		zap.Int("bytes", len(payload)),
	)
	return payload, nil
}
