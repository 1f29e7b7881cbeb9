package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"
)

const apiPrefix = "/api/v1"

// RequestOptions configures a single API request.
type RequestOptions struct {
	// Headers are merged into the request after the standard headers.
	Headers http.Header
	// Public marks endpoints that never carry credentials (login, signup,
	// refresh). A 401 from a public endpoint is a domain failure, not an
	// expired session, and never triggers the refresh flow.
	Public bool
	// VillageID scopes the request to one village when the portal serves
	// several. Overrides the client-level village, if any.
	VillageID string
}

// Transport executes single HTTP requests against the portal API and
// normalizes every outcome into an Envelope. It attaches headers and decodes
// bodies; it knows nothing about refresh or retries.
type Transport struct {
	baseURL   string
	http      *http.Client
	store     TokenStore
	villageID string
	timeout   time.Duration
}

// Do executes one request and always returns an envelope. Network failures
// become NETWORK_ERROR envelopes, undecodable bodies become PARSE_ERROR
// envelopes; nothing is raised past this boundary.
func (t *Transport) Do(ctx context.Context, method, path string, body any, opts RequestOptions) *Envelope {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	endpoint, err := url.JoinPath(t.baseURL, apiPrefix, path)
	if err != nil {
		return parseErrorEnvelope(0, err)
	}

	var reader io.Reader
	if body != nil && method != http.MethodGet && method != http.MethodDelete {
		encoded, err := json.Marshal(body)
		if err != nil {
			return parseErrorEnvelope(0, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return parseErrorEnvelope(0, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if !opts.Public {
		// Missing tokens are not an error here: authorization failures are
		// detected from the response, never pre-checked.
		if token := t.store.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if village := firstNonEmpty(opts.VillageID, t.villageID); village != "" {
		req.Header.Set("X-Village-Id", village)
	}
	for key, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return networkErrorEnvelope(err)
	}
	defer resp.Body.Close()

	env := &Envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return parseErrorEnvelope(resp.StatusCode, err)
	}
	env.status = resp.StatusCode
	return env
}
