package dummyjson

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/restkit/apiclient"
	"github.com/s0up4200/restkit/model"
)

// DefaultBaseURL is the public DummyJSON service
const DefaultBaseURL = "https://dummyjson.com"

// DefaultLimit is the page size used when ListOptions leaves it unset
const DefaultLimit = 30

// API is the part of *apiclient.Client the resource clients depend on
type API interface {
	Get(ctx context.Context, path string, opts *apiclient.RequestOptions) (*apiclient.Response, error)
	Post(ctx context.Context, path string, opts *apiclient.RequestOptions) (*apiclient.Response, error)
	Put(ctx context.Context, path string, opts *apiclient.RequestOptions) (*apiclient.Response, error)
	Patch(ctx context.Context, path string, opts *apiclient.RequestOptions) (*apiclient.Response, error)
	Delete(ctx context.Context, path string, opts *apiclient.RequestOptions) (*apiclient.Response, error)
	SetBearerToken(token string)
}

var _ API = (*apiclient.Client)(nil)

// Client groups the resource clients over one shared core client
type Client struct {
	Users    *UserClient
	Products *ProductClient
	Auth     *AuthClient
}

// New creates the resource clients on top of api
func New(api API, logger zerolog.Logger) *Client {
	return &Client{
		Users:    &UserClient{api: api, logger: logger},
		Products: &ProductClient{api: api, logger: logger},
		Auth:     &AuthClient{api: api, logger: logger},
	}
}

// ListOptions controls paging and sorting for list endpoints
type ListOptions struct {
	// Limit is the page size. Zero means DefaultLimit.
	Limit int
	// All requests every item (limit=0) and overrides Limit.
	All  bool
	Skip int
	// Select restricts the returned fields. Partial entities fail
	// validation unless the target type makes the missing fields optional.
	Select []string
	SortBy string
	// Order is "asc" or "desc"
	Order string
}

func (o *ListOptions) values() url.Values {
	if o == nil {
		o = &ListOptions{}
	}

	limit := o.Limit
	switch {
	case o.All:
		limit = 0
	case limit <= 0:
		limit = DefaultLimit
	}

	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("skip", strconv.Itoa(max(o.Skip, 0)))
	if len(o.Select) > 0 {
		v.Set("select", strings.Join(o.Select, ","))
	}
	if o.SortBy != "" {
		v.Set("sortBy", o.SortBy)
		if o.Order != "" {
			v.Set("order", o.Order)
		}
	}
	return v
}

func withQuery(opts *ListOptions, extra url.Values) *apiclient.RequestOptions {
	q := opts.values()
	for k, vs := range extra {
		q[k] = vs
	}
	return &apiclient.RequestOptions{Query: q}
}

// decode turns a response into a validated entity.
func decode[T any](resp *apiclient.Response, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	v, err := model.Decode[T](resp.Body)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func itemPath(resource string, id int) string {
	return resource + "/" + strconv.Itoa(id)
}
