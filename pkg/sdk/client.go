package sdk

import (
	"context"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client provides access to the VillageOrbit portal API. It layers the
// retry-on-unauthorized protocol over Transport: a 401 on an authenticated
// request triggers a single coordinated token refresh and exactly one retry.
type Client struct {
	baseURL   string
	store     TokenStore
	transport *Transport
	refresher *RefreshCoordinator
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient *http.Client
	TokenStore TokenStore
	Timeout    time.Duration
	VillageID  string
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithTokenStore overrides the credential store. The default is an
// in-memory store that lives as long as the client.
func WithTokenStore(store TokenStore) ClientOption {
	return func(opts *ClientOptions) {
		opts.TokenStore = store
	}
}

// WithTimeout bounds each request that arrives without a context deadline.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.Timeout = timeout
	}
}

// WithVillageID scopes all requests from this client to one village.
func WithVillageID(id string) ClientOption {
	return func(opts *ClientOptions) {
		opts.VillageID = id
	}
}

// NewClient creates a portal API client for the server at baseURL. An
// http.Client and an in-memory token store are created automatically when
// none are supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.TokenStore == nil {
		opts.TokenStore = NewMemoryStore()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	transport := &Transport{
		baseURL:   baseURL,
		http:      opts.HTTPClient,
		store:     opts.TokenStore,
		villageID: opts.VillageID,
		timeout:   opts.Timeout,
	}

	return &Client{
		baseURL:   baseURL,
		store:     opts.TokenStore,
		transport: transport,
		refresher: &RefreshCoordinator{store: opts.TokenStore, transport: transport},
	}
}

// BaseURL returns the server URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the client's token store.
func (c *Client) Store() TokenStore {
	return c.store
}

// Do executes one logical API call. An authenticated request that comes back
// 401 triggers the refresh coordinator; when the refresh succeeds the
// request is retried exactly once with the new token and that second result
// is returned as-is, even if it is another 401. The stored session is
// cleared only when the server actually rejects the refresh token; a refresh
// that never got a verdict, or a caller whose context ended while waiting on
// someone else's refresh, leaves the tokens in place and surfaces the
// failure instead.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts RequestOptions) *Envelope {
	env := c.transport.Do(ctx, method, path, body, opts)
	if env.status != http.StatusUnauthorized || opts.Public {
		return env
	}

	status, cause := c.refresher.Refresh(ctx)
	switch status {
	case refreshSucceeded:
		return c.transport.Do(ctx, method, path, body, opts)
	case refreshUnavailable:
		return cause
	case refreshCancelled:
		return networkErrorEnvelope(ctx.Err())
	default:
		c.store.ClearTokens()
		return sessionExpiredEnvelope()
	}
}

// Get issues an authenticated GET request.
func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) *Envelope {
	return c.Do(ctx, http.MethodGet, path, nil, opts)
}

// Post issues an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts RequestOptions) *Envelope {
	return c.Do(ctx, http.MethodPost, path, body, opts)
}

// Put issues an authenticated PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts RequestOptions) *Envelope {
	return c.Do(ctx, http.MethodPut, path, body, opts)
}

// Delete issues an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts RequestOptions) *Envelope {
	return c.Do(ctx, http.MethodDelete, path, nil, opts)
}
