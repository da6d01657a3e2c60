package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/kelydev/apiTramite/models"
)

// Resource is the CRUD collection served at one path, e.g. "/areas".
type Resource[T models.Entity[T]] struct {
	c    *Client
	path string
}

// NewResource binds a collection path to c.
func NewResource[T models.Entity[T]](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

// Path is the collection path.
func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) item(id int) string {
	return r.path + "/" + strconv.Itoa(id)
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, page, size int) (models.Page[T], error) {
	return r.page(ctx, map[string]string{"page": strconv.Itoa(page), "pageSize": strconv.Itoa(size)})
}

// Search fetches one page of records matching term.
func (r *Resource[T]) Search(ctx context.Context, term string, page, size int) (models.Page[T], error) {
	return r.page(ctx, map[string]string{"q": term, "page": strconv.Itoa(page), "pageSize": strconv.Itoa(size)})
}

func (r *Resource[T]) page(ctx context.Context, params map[string]string) (models.Page[T], error) {
	var out models.Page[T]
	_, err := r.c.call(ctx, http.MethodGet, r.path, false, func(req *resty.Request) {
		req.SetQueryParams(params).SetResult(&out)
	})
	return out, err
}

// All fetches every record without pagination.
func (r *Resource[T]) All(ctx context.Context) ([]T, error) {
	var out models.ListResponse[T]
	_, err := r.c.call(ctx, http.MethodGet, r.path, false, func(req *resty.Request) {
		req.SetQueryParam("all", "true").SetResult(&out)
	})
	return out.Data, err
}

func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var out T
	_, err := r.c.call(ctx, http.MethodGet, r.item(id), false, func(req *resty.Request) { req.SetResult(&out) })
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	var out T
	_, err := r.c.call(ctx, http.MethodPost, r.path, false, func(req *resty.Request) {
		req.SetBody(item).SetResult(&out)
	})
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, item T) (T, error) {
	var out T
	_, err := r.c.call(ctx, http.MethodPut, r.item(item.EntityID()), false, func(req *resty.Request) {
		req.SetBody(item).SetResult(&out)
	})
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	_, err := r.c.call(ctx, http.MethodDelete, r.item(id), false, nil)
	return err
}
