package oauth

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expiryDelta is the safety margin before token expiry at which a refresh is triggered
const expiryDelta = time.Minute

// TokenRefresher exchanges an expired token for a new one
type TokenRefresher interface {
	RefreshToken(token *oauth2.Token) (*oauth2.Token, error)
}

// TokenSource is an oauth2.TokenSource that refreshes through a TokenRefresher.
// The mutex guarantees at most one outstanding refresh call- concurrent
// callers block and observe the refreshed token instead of refreshing again.
type TokenSource struct {
	mu        sync.Mutex
	token     *oauth2.Token
	refresher TokenRefresher
}

// RefreshTokenSource creates a token source around the given token and refresher
func RefreshTokenSource(token *oauth2.Token, refresher TokenRefresher) *TokenSource {
	return &TokenSource{token: token, refresher: refresher}
}

// Token returns a token with expiry strictly in the future. A failed refresh
// caches nothing and surfaces the refresher's error.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != nil && time.Until(ts.token.Expiry) >= expiryDelta {
		return ts.token, nil
	}

	token, err := ts.refresher.RefreshToken(ts.token)
	if err != nil {
		return nil, err
	}

	ts.token = token
	return ts.token, nil
}

// Invalidate discards the cached token, forcing a refresh on next use
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.token = nil
	ts.mu.Unlock()
}
