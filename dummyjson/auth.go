package dummyjson

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/s0up4200/restkit/apiclient"
	"github.com/s0up4200/restkit/model"
)

// DefaultTokenTTL is the token lifetime requested when none is given
const DefaultTokenTTL = 60

// AuthClient covers the /auth resource
type AuthClient struct {
	api    API
	logger zerolog.Logger
}

// Login exchanges credentials for a token pair. expiresInMins <= 0 uses
// DefaultTokenTTL.
func (c *AuthClient) Login(ctx context.Context, username, password string, expiresInMins int) (*LoginResponse, error) {
	if expiresInMins <= 0 {
		expiresInMins = DefaultTokenTTL
	}
	req := LoginRequest{Username: username, Password: password, ExpiresInMins: expiresInMins}
	if err := model.Validate(&req); err != nil {
		return nil, err
	}

	return decode[LoginResponse](c.api.Post(ctx, "/auth/login", &apiclient.RequestOptions{Body: req}))
}

// Me returns the user owning accessToken. The token is sent on this call
// only; the shared default headers are left alone.
func (c *AuthClient) Me(ctx context.Context, accessToken string) (*User, error) {
	opts := &apiclient.RequestOptions{
		Headers: map[string]string{apiclient.HeaderAuthorization: "Bearer " + accessToken},
	}
	return decode[User](c.api.Get(ctx, "/auth/me", opts))
}

// Refresh exchanges a refresh token for a new token pair
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string, expiresInMins int) (*RefreshTokenResponse, error) {
	if expiresInMins <= 0 {
		expiresInMins = DefaultTokenTTL
	}
	req := RefreshTokenRequest{RefreshToken: refreshToken, ExpiresInMins: expiresInMins}
	if err := model.Validate(&req); err != nil {
		return nil, err
	}

	return decode[RefreshTokenResponse](c.api.Post(ctx, "/auth/refresh", &apiclient.RequestOptions{Body: req}))
}

// Authenticate logs in and installs the access token as the bearer token of
// the shared client, so every later request is authenticated.
func (c *AuthClient) Authenticate(ctx context.Context, username, password string) (*LoginResponse, error) {
	login, err := c.Login(ctx, username, password, 0)
	if err != nil {
		return nil, err
	}

	c.api.SetBearerToken(login.AccessToken)
	c.logger.Info().Str("username", login.Username).Int("id", login.ID).Msg("Authenticated")
	return login, nil
}
