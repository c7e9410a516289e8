// Package repohost creates remote repositories on GitHub.
package repohost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

// HostError is a non-success answer from the hosting API.
type HostError struct {
	Status int
	Body   string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("repository host returned %d: %s", e.Status, e.Body)
}

// Client creates repositories under the authenticated user.
type Client struct {
	gh      *github.Client
	private bool
}

type options struct {
	baseURL    string
	private    bool
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests).
func WithBaseURL(raw string) Option {
	return func(o *options) { o.baseURL = raw }
}

// WithPrivate creates private repositories instead of public ones.
func WithPrivate(private bool) Option {
	return func(o *options) { o.private = private }
}

// WithHTTPClient overrides the transport used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New creates a client authenticated with token.
func New(token string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	gh := github.NewClient(o.httpClient).WithAuthToken(token)
	if o.baseURL != "" {
		raw := o.baseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid api url %q: %w", o.baseURL, err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh, private: o.private}, nil
}

// CreateRepository creates name and returns its clone URL. Any status other
// than 201 Created is reported as a *HostError.
func (c *Client) CreateRepository(ctx context.Context, name string) (string, error) {
	repo, resp, err := c.gh.Repositories.Create(ctx, "", &github.Repository{
		Name:     github.String(name),
		Private:  github.Bool(c.private),
		AutoInit: github.Bool(false),
	})
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil {
			return "", &HostError{Status: errResp.Response.StatusCode, Body: errResp.Message}
		}
		return "", fmt.Errorf("failed to create repository: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", &HostError{Status: resp.StatusCode, Body: http.StatusText(resp.StatusCode)}
	}
	if repo.GetCloneURL() == "" {
		return "", &HostError{Status: resp.StatusCode, Body: "response has no clone_url"}
	}
	return repo.GetCloneURL(), nil
}
