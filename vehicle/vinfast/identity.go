package vinfast

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/util"
	"github.com/andig/vinfast/util/oauth"
	"github.com/andig/vinfast/util/request"
	"golang.org/x/oauth2"
)

// Identity performs the Auth0 credential exchange. It implements
// oauth2.TokenSource via the serialized refreshing token source.
type Identity struct {
	*request.Helper
	*oauth.TokenSource
	log            *util.Logger
	user, password string
}

// NewIdentity creates the VinFast identity for the given account
func NewIdentity(log *util.Logger, user, password string) *Identity {
	v := &Identity{
		Helper:   request.NewHelper(log),
		log:      log.Redact(user, password),
		user:     user,
		password: password,
	}

	v.TokenSource = oauth.RefreshTokenSource(nil, v)

	return v
}

// Login validates the credentials by forcing an initial token exchange
func (v *Identity) Login() error {
	v.Invalidate()
	_, err := v.Token()
	return err
}

// RefreshToken implements oauth.TokenRefresher. Without a refresh token the
// full password grant is performed; a failed refresh grant falls back to it.
func (v *Identity) RefreshToken(token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil || token.RefreshToken == "" {
		return v.login()
	}

	data := map[string]string{
		"client_id":     ClientID,
		"grant_type":    "refresh_token",
		"refresh_token": token.RefreshToken,
	}

	res, err := v.tokenExchange(data)
	if err != nil {
		v.log.DEBUG.Printf("token refresh failed: %v- performing login", err)
		return v.login()
	}

	// Auth0 may rotate or omit the refresh token
	if res.RefreshToken == "" {
		res.RefreshToken = token.RefreshToken
	}

	return res, nil
}

// login performs the resource-owner password grant
func (v *Identity) login() (*oauth2.Token, error) {
	v.log.DEBUG.Println("performing login")

	data := map[string]string{
		"client_id":  ClientID,
		"audience":   Audience,
		"grant_type": "password",
		"scope":      Scopes,
		"username":   v.user,
		"password":   v.password,
	}

	return v.tokenExchange(data)
}

func (v *Identity) tokenExchange(data map[string]string) (*oauth2.Token, error) {
	uri := fmt.Sprintf("%s/oauth/token", OAuthURI)

	req, err := request.New(http.MethodPost, uri, request.MarshalJSON(data), request.JSONEncoding)
	if err != nil {
		return nil, err
	}

	var token oauth.Token
	if err := v.DoJSON(req, &token); err != nil {
		var se request.StatusError
		if errors.As(err, &se) && se.HasStatus(http.StatusUnauthorized, http.StatusForbidden) {
			return nil, fmt.Errorf("%w: invalid credentials", api.ErrAuthFail)
		}
		return nil, err
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token", api.ErrAuthFail)
	}

	// keep secrets out of trace logs
	v.log.Redact(token.AccessToken, token.RefreshToken)

	return &token.Token, nil
}
