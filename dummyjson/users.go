package dummyjson

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/s0up4200/restkit/apiclient"
)

// UserClient covers the /users resource
type UserClient struct {
	api    API
	logger zerolog.Logger
}

// List returns one page of users
func (c *UserClient) List(ctx context.Context, opts *ListOptions) (*UsersPage, error) {
	return decode[UsersPage](c.api.Get(ctx, "/users", withQuery(opts, nil)))
}

// Get returns a single user
func (c *UserClient) Get(ctx context.Context, id int) (*User, error) {
	return decode[User](c.api.Get(ctx, itemPath("/users", id), nil))
}

// Search returns users matching query
func (c *UserClient) Search(ctx context.Context, query string, opts *ListOptions) (*UsersPage, error) {
	return decode[UsersPage](c.api.Get(ctx, "/users/search", withQuery(opts, url.Values{"q": {query}})))
}

// Filter returns users whose key equals value. Nested keys use dots, e.g.
// "hair.color".
func (c *UserClient) Filter(ctx context.Context, key, value string, opts *ListOptions) (*UsersPage, error) {
	if key == "" {
		return nil, fmt.Errorf("filter key is required")
	}
	q := url.Values{"key": {key}, "value": {value}}
	return decode[UsersPage](c.api.Get(ctx, "/users/filter", withQuery(opts, q)))
}

// Add creates a user. The service echoes the submitted fields with a new
// ID, so data must describe a complete user for the response to validate.
func (c *UserClient) Add(ctx context.Context, data any) (*User, error) {
	return decode[User](c.api.Post(ctx, "/users/add", &apiclient.RequestOptions{Body: data}))
}

// Update replaces fields of a user and returns the updated user
func (c *UserClient) Update(ctx context.Context, id int, data any) (*User, error) {
	return decode[User](c.api.Put(ctx, itemPath("/users", id), &apiclient.RequestOptions{Body: data}))
}

// Patch is Update using PATCH semantics
func (c *UserClient) Patch(ctx context.Context, id int, data any) (*User, error) {
	return decode[User](c.api.Patch(ctx, itemPath("/users", id), &apiclient.RequestOptions{Body: data}))
}

// Delete removes a user and returns it with IsDeleted set
func (c *UserClient) Delete(ctx context.Context, id int) (*User, error) {
	return decode[User](c.api.Delete(ctx, itemPath("/users", id), nil))
}
