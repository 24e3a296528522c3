package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/observability"
)

// DefaultHTTPTimeout bounds a single upstream request.
const DefaultHTTPTimeout = 30 * time.Second

// HTTP fetches {BaseURL}/projects/{project}/characters and
// {BaseURL}/projects/{project}/relations.
type HTTP struct {
	BaseURL string
	Client  *http.Client
	Headers map[string]string
	Backoff cache.Backoff
}

// NewHTTP returns an HTTP source for baseURL. token, if set, is sent as a
// bearer token.
func NewHTTP(baseURL, token string) (*HTTP, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	h := &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: DefaultHTTPTimeout},
		Headers: map[string]string{"Accept": "application/json"},
		Backoff: cache.DefaultBackoff,
	}
	if token != "" {
		h.Headers["Authorization"] = "Bearer " + token
	}
	return h, nil
}

func (*HTTP) Name() string { return "http" }

// Scope is the base URL the datasets are read from.
func (h *HTTP) Scope() string { return "http:" + h.BaseURL }

// Load fetches both collections concurrently. Either failing fails the
// load.
func (h *HTTP) Load(ctx context.Context, project string) (graph.Dataset, error) {
	return observe(ctx, h.Name(), project, func() (graph.Dataset, error) {
		var ds graph.Dataset
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return h.get(gctx, h.endpoint(project, "characters"), &ds.Characters)
		})
		g.Go(func() error {
			return h.get(gctx, h.endpoint(project, "relations"), &ds.Relations)
		})
		if err := g.Wait(); err != nil {
			return graph.Dataset{}, err
		}
		return ds, nil
	})
}

func (h *HTTP) endpoint(project, collection string) string {
	return fmt.Sprintf("%s/projects/%s/%s", h.BaseURL, url.PathEscape(project), collection)
}

func (h *HTTP) get(ctx context.Context, rawURL string, v any) error {
	return h.Backoff.Retry(ctx, func() error {
		return h.do(ctx, rawURL, v)
	})
}

func (h *HTTP) do(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, val := range h.Headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", rawURL)
	}
	return nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "GET %s: not found", rawURL)
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, code))
	default:
		return errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, code)
	}
}

var _ Source = (*HTTP)(nil)
