package dummyjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/restkit/apiclient"
	"github.com/s0up4200/restkit/model"
)

func fixture(t *testing.T, name string, overrides map[string]any) map[string]any {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for k, v := range overrides {
		m[k] = v
	}
	return m
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeDummyJSON serves a subset of the DummyJSON API from the fixtures.
type fakeDummyJSON struct {
	t        *testing.T
	lastAuth atomic.Value
	lastURL  atomic.Value
	lastBody atomic.Value
}

func (f *fakeDummyJSON) handler() http.Handler {
	t := f.t
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		f.lastURL.Store(r.URL.String())
		count := min(limit, 3)
		if limit == 0 {
			count = 3
		}
		users := make([]any, 0, count)
		for i := range count {
			users = append(users, fixture(t, "user.json", map[string]any{"id": skip + i + 1}))
		}
		writeJSON(w, map[string]any{"users": users, "total": 208, "skip": skip, "limit": limit})
	})
	mux.HandleFunc("GET /users/search", func(w http.ResponseWriter, r *http.Request) {
		users := []any{}
		if strings.EqualFold(r.URL.Query().Get("q"), "emily") {
			users = append(users, fixture(t, "user.json", nil))
		}
		writeJSON(w, map[string]any{"users": users, "total": len(users), "skip": 0, "limit": len(users)})
	})
	mux.HandleFunc("GET /users/filter", func(w http.ResponseWriter, r *http.Request) {
		f.lastURL.Store(r.URL.String())
		writeJSON(w, map[string]any{
			"users": []any{fixture(t, "user.json", nil)},
			"total": 1, "skip": 0, "limit": 30,
		})
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || id <= 0 || id > 208 {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]any{"message": fmt.Sprintf("User with id '%s' not found", r.PathValue("id"))})
			return
		}
		writeJSON(w, fixture(t, "user.json", map[string]any{"id": id}))
	})
	mux.HandleFunc("POST /users/add", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastBody.Store(body)
		body["id"] = 209
		writeJSON(w, body)
	})
	mux.HandleFunc("PUT /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		id, _ := strconv.Atoi(r.PathValue("id"))
		writeJSON(w, fixture(t, "user.json", merge(body, map[string]any{"id": id})))
	})
	mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		writeJSON(w, fixture(t, "user.json", map[string]any{
			"id": id, "isDeleted": true, "deletedOn": "2024-06-01T10:00:00.000Z",
		}))
	})

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		f.lastURL.Store(r.URL.String())
		writeJSON(w, map[string]any{
			"products": []any{fixture(t, "product.json", nil), fixture(t, "product.json", map[string]any{"id": 2})},
			"total":    194, "skip": 0, "limit": 2,
		})
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		writeJSON(w, fixture(t, "product.json", map[string]any{"id": id}))
	})
	mux.HandleFunc("GET /products/category/{category}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"products": []any{fixture(t, "product.json", map[string]any{"category": r.PathValue("category")})},
			"total":    1, "skip": 0, "limit": 30,
		})
	})
	mux.HandleFunc("GET /products/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			map[string]any{"slug": "beauty", "name": "Beauty", "url": "https://dummyjson.com/products/category/beauty"},
			map[string]any{"name": "Fragrances"},
		})
	})
	mux.HandleFunc("POST /products/add", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = 195
		writeJSON(w, body)
	})
	mux.HandleFunc("DELETE /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		writeJSON(w, fixture(t, "product.json", map[string]any{"id": id, "isDeleted": true}))
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastBody.Store(req)
		if req.Username != "emilys" || req.Password != "emilyspass" {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]any{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, map[string]any{
			"id": 1, "username": "emilys", "email": "emily.johnson@x.dummyjson.com",
			"firstName": "Emily", "lastName": "Johnson", "gender": "female",
			"image":       "https://dummyjson.com/icon/emilys/128",
			"accessToken": "access-1", "refreshToken": "refresh-1",
		})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "refresh-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, map[string]any{"accessToken": "access-2", "refreshToken": "refresh-2"})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		f.lastAuth.Store(auth)
		if !strings.HasPrefix(auth, "Bearer access-") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, fixture(t, "user.json", nil))
	})

	return mux
}

func merge(a, b map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func newTestClient(t *testing.T) (*Client, *apiclient.Client, *fakeDummyJSON) {
	t.Helper()
	fake := &fakeDummyJSON{t: t}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	cfg := apiclient.DefaultConfig(server.URL)
	cfg.MaxRetries = 1
	cfg.RetryInterval = 0

	api, err := apiclient.NewClient(cfg, apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = api.Close() })

	return New(api, zerolog.Nop()), api, fake
}

func TestUsers(t *testing.T) {
	dj, _, fake := newTestClient(t)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		page, err := dj.Users.List(ctx, &ListOptions{Limit: 3, Skip: 10})
		require.NoError(t, err)
		assert.Len(t, page.Users, 3)
		assert.Equal(t, 208, page.Total)
		assert.Equal(t, 10, page.Skip)
		assert.Equal(t, 3, page.Limit)
		assert.Equal(t, 11, page.Users[0].ID)
		assert.True(t, page.HasMore())
	})

	t.Run("list all", func(t *testing.T) {
		page, err := dj.Users.List(ctx, &ListOptions{All: true, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, "/users?limit=0&skip=0", fake.lastURL.Load())
		assert.Len(t, page.Users, 3)
		assert.Equal(t, 0, page.Limit)
		assert.False(t, page.HasMore())

		_, err = dj.Users.List(ctx, &ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, "/users?limit=30&skip=0", fake.lastURL.Load())
	})

	t.Run("get", func(t *testing.T) {
		u, err := dj.Users.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Emily Johnson", u.FullName())
		assert.Equal(t, "Phoenix", u.Address.City)
		require.NotNil(t, u.Address.State)
		assert.Equal(t, "Mississippi", *u.Address.State)
		assert.InDelta(t, -77.16213, u.Address.Coordinates.Lat, 1e-9)
		assert.Equal(t, "San Francisco", u.Company.Address.City)
		assert.Nil(t, u.IsDeleted)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := dj.Users.Get(ctx, 9999)
		require.Error(t, err)
		assert.True(t, apiclient.IsStatus(err, http.StatusNotFound))

		var statusErr *apiclient.HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, 2, statusErr.Attempts)
		assert.Contains(t, string(statusErr.Body), "not found")
	})

	t.Run("search", func(t *testing.T) {
		page, err := dj.Users.Search(ctx, "Emily", nil)
		require.NoError(t, err)
		require.Len(t, page.Users, 1)
		assert.Equal(t, "emilys", page.Users[0].Username)

		page, err = dj.Users.Search(ctx, "nobody", nil)
		require.NoError(t, err)
		assert.Empty(t, page.Users)
	})

	t.Run("filter", func(t *testing.T) {
		page, err := dj.Users.Filter(ctx, "hair.color", "Brown", nil)
		require.NoError(t, err)
		require.Len(t, page.Users, 1)
		assert.Equal(t, "Brown", page.Users[0].Hair.Color)
		assert.Equal(t, "/users/filter?key=hair.color&limit=30&skip=0&value=Brown", fake.lastURL.Load())

		_, err = dj.Users.Filter(ctx, "", "Brown", nil)
		assert.Error(t, err)
	})

	t.Run("add", func(t *testing.T) {
		data := fixture(t, "user.json", nil)
		delete(data, "id")
		data["firstName"] = "  Muhammad "

		u, err := dj.Users.Add(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, 209, u.ID)
		assert.Equal(t, "Muhammad", u.FirstName)
	})

	t.Run("add partial fails validation", func(t *testing.T) {
		_, err := dj.Users.Add(ctx, map[string]any{"firstName": "Muhammad", "age": 250})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.False(t, apiclient.IsRetryable(err))
	})

	t.Run("update", func(t *testing.T) {
		u, err := dj.Users.Update(ctx, 2, map[string]any{"lastName": "Owais"})
		require.NoError(t, err)
		assert.Equal(t, 2, u.ID)
		assert.Equal(t, "Owais", u.LastName)
	})

	t.Run("delete", func(t *testing.T) {
		u, err := dj.Users.Delete(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, u.IsDeleted)
		assert.True(t, *u.IsDeleted)
		require.NotNil(t, u.DeletedOn)
		assert.Equal(t, 2024, u.DeletedOn.Year())
	})
}

func TestUsersGetMany(t *testing.T) {
	dj, _, _ := newTestClient(t)

	result, err := dj.Users.GetMany(context.Background(), []int{3, 1, 9999, 2, -1})
	require.NoError(t, err)

	require.Len(t, result.Found, 3)
	assert.Equal(t, 3, result.Found[0].ID)
	assert.Equal(t, 1, result.Found[1].ID)
	assert.Equal(t, 2, result.Found[2].ID)

	require.Len(t, result.Failed, 2)
	assert.Equal(t, 9999, result.Failed[0].ID)
	assert.Equal(t, -1, result.Failed[1].ID)
	assert.True(t, apiclient.IsStatus(result.Failed[0], http.StatusNotFound))
	assert.Contains(t, result.Failed[0].Error(), "id 9999")
}

func TestGetManyCancelled(t *testing.T) {
	dj, _, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dj.Products.GetMany(ctx, []int{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProducts(t *testing.T) {
	dj, _, fake := newTestClient(t)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		page, err := dj.Products.List(ctx, &ListOptions{Limit: 2, SortBy: "title", Order: "asc", Select: []string{"title", "price"}})
		require.NoError(t, err)
		assert.Len(t, page.Products, 2)
		assert.Equal(t, 194, page.Total)
		assert.Equal(t, "/products?limit=2&order=asc&select=title%2Cprice&skip=0&sortBy=title", fake.lastURL.Load())
	})

	t.Run("get", func(t *testing.T) {
		p, err := dj.Products.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Essence Mascara Lash Princess", p.Title)
		require.NotNil(t, p.Dimensions)
		assert.InDelta(t, 23.17, p.Dimensions.Width, 1e-9)
		require.Len(t, p.Reviews, 1)
		assert.Equal(t, 2024, p.Reviews[0].Date.Year())
		require.NotNil(t, p.Meta)
		assert.Equal(t, "9164035109868", p.Meta.Barcode)
		assert.True(t, p.InStock())
	})

	t.Run("by category", func(t *testing.T) {
		page, err := dj.Products.ByCategory(ctx, "smartphones", nil)
		require.NoError(t, err)
		require.Len(t, page.Products, 1)
		assert.Equal(t, "smartphones", page.Products[0].Category)

		_, err = dj.Products.ByCategory(ctx, "  ", nil)
		assert.Error(t, err)
	})

	t.Run("categories", func(t *testing.T) {
		cats, err := dj.Products.Categories(ctx)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, "beauty", cats[0].Slug)
		assert.Equal(t, "Beauty", cats[0].Name)

		slugs, err := dj.Products.CategorySlugs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"beauty", "Fragrances"}, slugs)
	})

	t.Run("add minimal", func(t *testing.T) {
		p, err := dj.Products.Add(ctx, map[string]any{"title": " BMW Pencil ", "category": "stationery", "price": 5})
		require.NoError(t, err)
		assert.Equal(t, 195, p.ID)
		assert.Equal(t, "BMW Pencil", p.Title)
		assert.Nil(t, p.Brand)
		assert.True(t, p.InStock())
	})

	t.Run("add negative price", func(t *testing.T) {
		_, err := dj.Products.Add(ctx, map[string]any{"title": "Pencil", "category": "stationery", "price": -5})
		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "price", verr.Path)
	})

	t.Run("delete", func(t *testing.T) {
		p, err := dj.Products.Delete(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, p.IsDeleted)
		assert.True(t, *p.IsDeleted)
	})
}

func TestCategoryShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"strings", `["beauty", " fragrances "]`, []string{"beauty", "fragrances"}},
		{"objects with slug", `[{"slug":"beauty","name":"Beauty"}]`, []string{"beauty"}},
		{"object with name only", `[{"name":"Furniture"}]`, []string{"Furniture"}},
		{"empty", `[]`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats, err := model.Decode[[]Category]([]byte(tt.body))
			require.NoError(t, err)
			got := make([]string, 0, len(cats))
			for _, c := range cats {
				got = append(got, c.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := model.Decode[[]Category]([]byte(`[42]`))
	assert.Error(t, err)
}

func TestPageLimitInvariant(t *testing.T) {
	body := `{"products":[{"id":1,"title":"a","category":"c","price":1},{"id":2,"title":"b","category":"c","price":1}],"total":2,"skip":0,"limit":1}`
	_, err := model.Decode[ProductsPage]([]byte(body))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)

	body = `{"products":[{"id":1,"title":"a","category":"c","price":1}],"total":1,"skip":0,"limit":0}`
	page, err := model.Decode[ProductsPage]([]byte(body))
	require.NoError(t, err)
	assert.False(t, page.HasMore())

	_, err = model.Decode[ProductsPage]([]byte(`{"products":[],"total":-1,"skip":0,"limit":0}`))
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "total", verr.Path)
}

func TestAuth(t *testing.T) {
	dj, api, fake := newTestClient(t)
	ctx := context.Background()

	t.Run("login", func(t *testing.T) {
		login, err := dj.Auth.Login(ctx, "emilys", "emilyspass", 0)
		require.NoError(t, err)
		assert.Equal(t, "access-1", login.AccessToken)
		assert.Equal(t, "refresh-1", login.RefreshToken)

		sent := fake.lastBody.Load().(LoginRequest)
		assert.Equal(t, DefaultTokenTTL, sent.ExpiresInMins)
	})

	t.Run("login rejected", func(t *testing.T) {
		_, err := dj.Auth.Login(ctx, "emilys", "wrong", 30)
		assert.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
	})

	t.Run("login requires credentials", func(t *testing.T) {
		_, err := dj.Auth.Login(ctx, " ", "emilyspass", 0)
		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "username", verr.Path)
	})

	t.Run("me uses per-call token", func(t *testing.T) {
		u, err := dj.Auth.Me(ctx, "access-1")
		require.NoError(t, err)
		assert.Equal(t, "emilys", u.Username)
		assert.Equal(t, "Bearer access-1", fake.lastAuth.Load())
		assert.NotContains(t, api.DefaultHeaders(), apiclient.HeaderAuthorization)
	})

	t.Run("refresh", func(t *testing.T) {
		tokens, err := dj.Auth.Refresh(ctx, "refresh-1", 30)
		require.NoError(t, err)
		assert.Equal(t, "access-2", tokens.AccessToken)

		_, err = dj.Auth.Refresh(ctx, "", 30)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("authenticate sets bearer token", func(t *testing.T) {
		_, err := dj.Auth.Authenticate(ctx, "emilys", "emilyspass")
		require.NoError(t, err)
		assert.Equal(t, "Bearer access-1", api.DefaultHeaders()[apiclient.HeaderAuthorization])

		_, err = api.Get(ctx, "/auth/me", nil)
		require.NoError(t, err)
		assert.Equal(t, "Bearer access-1", fake.lastAuth.Load())
	})
}
