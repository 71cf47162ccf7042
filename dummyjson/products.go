package dummyjson

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/restkit/apiclient"
	"github.com/s0up4200/restkit/model"
)

// ProductClient covers the /products resource
type ProductClient struct {
	api    API
	logger zerolog.Logger
}

// List returns one page of products
func (c *ProductClient) List(ctx context.Context, opts *ListOptions) (*ProductsPage, error) {
	return decode[ProductsPage](c.api.Get(ctx, "/products", withQuery(opts, nil)))
}

// Get returns a single product
func (c *ProductClient) Get(ctx context.Context, id int) (*Product, error) {
	return decode[Product](c.api.Get(ctx, itemPath("/products", id), nil))
}

// Search returns products matching query
func (c *ProductClient) Search(ctx context.Context, query string, opts *ListOptions) (*ProductsPage, error) {
	return decode[ProductsPage](c.api.Get(ctx, "/products/search", withQuery(opts, url.Values{"q": {query}})))
}

// ByCategory returns the products of one category
func (c *ProductClient) ByCategory(ctx context.Context, category string, opts *ListOptions) (*ProductsPage, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	return decode[ProductsPage](c.api.Get(ctx, "/products/category/"+url.PathEscape(category), withQuery(opts, nil)))
}

// Categories returns every product category
func (c *ProductClient) Categories(ctx context.Context) ([]Category, error) {
	resp, err := c.api.Get(ctx, "/products/categories", nil)
	if err != nil {
		return nil, err
	}

	categories, err := model.Decode[[]Category](resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(categories)).Msg("Fetched product categories")
	return categories, nil
}

// CategorySlugs returns the slug of every category
func (c *ProductClient) CategorySlugs(ctx context.Context) ([]string, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(categories))
	for _, cat := range categories {
		slugs = append(slugs, cat.String())
	}
	return slugs, nil
}

// Add creates a product and returns what the service stored
func (c *ProductClient) Add(ctx context.Context, data any) (*Product, error) {
	return decode[Product](c.api.Post(ctx, "/products/add", &apiclient.RequestOptions{Body: data}))
}

// Update replaces fields of a product
func (c *ProductClient) Update(ctx context.Context, id int, data any) (*Product, error) {
	return decode[Product](c.api.Put(ctx, itemPath("/products", id), &apiclient.RequestOptions{Body: data}))
}

// Delete removes a product and returns it with IsDeleted set
func (c *ProductClient) Delete(ctx context.Context, id int) (*Product, error) {
	return decode[Product](c.api.Delete(ctx, itemPath("/products", id), nil))
}
