// internal/client/catalog.go
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"console-agent/internal/domain/catalog"
)

func (b *Backend) ListProducts(ctx context.Context, filters catalog.ListFilters) (*catalog.ListResponse, error) {
	q := url.Values{}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.Category != "" {
		q.Set("category", filters.Category)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(filters.PageSize))
	}

	path := "/api/v1/products"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var out catalog.ListResponse
	if err := b.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *Backend) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	var out catalog.Product
	if err := b.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *Backend) CreateProduct(ctx context.Context, req catalog.CreateProductRequest) (*catalog.Product, error) {
	var out catalog.Product
	if err := b.do(ctx, http.MethodPost, "/api/v1/products", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *Backend) UpdateProduct(ctx context.Context, id int64, req catalog.UpdateProductRequest) (*catalog.Product, error) {
	var out catalog.Product
	if err := b.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *Backend) DeleteProduct(ctx context.Context, id int64) error {
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil, nil)
}
