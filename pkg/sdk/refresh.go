package sdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

var errMissingAccessToken = errors.New("refresh response carried no access token")

// tokenPair is the data payload of a successful refresh. The backend rotates
// the refresh token only when it is near expiry, so RefreshToken is often
// empty.
type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refreshStatus tells the pipeline what a refresh attempt means for the
// session. Only refreshRejected says the credentials are dead; the other
// failure modes leave the stored tokens usable.
type refreshStatus int

const (
	// refreshSucceeded: a new access token is in the store.
	refreshSucceeded refreshStatus = iota
	// refreshRejected: the server refused the refresh token, or there was
	// none to send. The session cannot be renewed.
	refreshRejected
	// refreshUnavailable: the refresh call never got a server verdict
	// (network failure, unparseable response). The tokens may still be good.
	refreshUnavailable
	// refreshCancelled: the caller's context ended while another caller's
	// refresh was still in flight. Says nothing about the session.
	refreshCancelled
)

type refreshOutcome struct {
	done   chan struct{}
	status refreshStatus
	cause  *Envelope
}

// RefreshCoordinator serializes concurrent token-refresh attempts so at most
// one network refresh is in flight per client. The first caller performs the
// request; everyone who arrives while it is pending waits on the same
// outcome. Each coordinator instance owns its own state, so isolated
// sessions in one process never share a refresh.
type RefreshCoordinator struct {
	store     TokenStore
	transport *Transport

	mu       sync.Mutex
	inflight *refreshOutcome
}

// Refresh exchanges the stored refresh token for a new access token. Callers
// that arrive while a refresh is pending observe the outcome of that refresh
// without issuing a second network call; a waiter whose context ends first
// gets refreshCancelled instead of the in-flight verdict. The envelope, set
// for refreshUnavailable, carries the failure that stopped the attempt. The
// coordinator never clears tokens; tearing the session down is the
// pipeline's decision.
func (c *RefreshCoordinator) Refresh(ctx context.Context) (refreshStatus, *Envelope) {
	c.mu.Lock()
	if pending := c.inflight; pending != nil {
		c.mu.Unlock()
		select {
		case <-pending.done:
			return pending.status, pending.cause
		case <-ctx.Done():
			return refreshCancelled, nil
		}
	}
	outcome := &refreshOutcome{done: make(chan struct{})}
	c.inflight = outcome
	c.mu.Unlock()

	outcome.status, outcome.cause = c.doRefresh(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(outcome.done)

	return outcome.status, outcome.cause
}

func (c *RefreshCoordinator) doRefresh(ctx context.Context) (refreshStatus, *Envelope) {
	refresh := c.store.RefreshToken()
	if refresh == "" {
		return refreshRejected, nil
	}

	env := c.transport.Do(ctx, http.MethodPost, "/auth/refresh-token",
		map[string]string{"refreshToken": refresh},
		RequestOptions{Public: true})
	if !env.Success {
		// A 4xx verdict means the server saw and refused the token. Anything
		// that never reached a verdict must not cost the user their session.
		if env.Error != nil && (env.Error.Code == CodeNetworkError || env.Error.Code == CodeParseError) {
			return refreshUnavailable, env
		}
		return refreshRejected, env
	}

	var pair tokenPair
	if err := env.DecodeData(&pair); err != nil {
		return refreshUnavailable, parseErrorEnvelope(env.status, err)
	}
	if pair.AccessToken == "" {
		return refreshUnavailable, parseErrorEnvelope(env.status, errMissingAccessToken)
	}
	if pair.RefreshToken != "" {
		c.store.SetTokens(pair.AccessToken, pair.RefreshToken)
	} else {
		c.store.SetAccessToken(pair.AccessToken)
	}
	return refreshSucceeded, nil
}
