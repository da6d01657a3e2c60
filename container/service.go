// Package container holds the paginated, searchable list state shared by
// every resource page: rows, pagination, search term, selection and modals.
package container

import (
	"context"
	"strings"

	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/utils"
)

// Service is the remote capability set a container needs.
type Service[T models.Entity[T]] interface {
	List(ctx context.Context, page, size int) (models.Page[T], error)
	Search(ctx context.Context, term string, page, size int) (models.Page[T], error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id int) error
}

// LocalService serves a container from a store in the same process, such as
// a repository.MemoryStore for demo pages.
type LocalService[T models.Entity[T]] struct {
	Store repository.Store[T]
}

func NewLocalService[T models.Entity[T]](store repository.Store[T]) *LocalService[T] {
	return &LocalService[T]{Store: store}
}

func (s *LocalService[T]) List(ctx context.Context, page, size int) (models.Page[T], error) {
	return s.page(ctx, "", page, size)
}

func (s *LocalService[T]) Search(ctx context.Context, term string, page, size int) (models.Page[T], error) {
	return s.page(ctx, strings.TrimSpace(term), page, size)
}

// page answers a request past the last page with the last page. Pages below
// 1 and sizes below 1 fall back to the defaults of the API.
func (s *LocalService[T]) page(ctx context.Context, term string, page, size int) (models.Page[T], error) {
	page = max(page, 1)
	if size < 1 {
		size = utils.DefaultPageSize
	}
	q := repository.Query{Search: term, Limit: size, Offset: utils.Offset(page, size)}
	items, total, err := s.Store.List(ctx, q)
	if err != nil {
		return models.Page[T]{}, err
	}
	if last := utils.TotalPages(total, size); len(items) == 0 && last > 0 && page > last {
		page = last
		q.Offset = utils.Offset(page, size)
		if items, total, err = s.Store.List(ctx, q); err != nil {
			return models.Page[T]{}, err
		}
	}
	return utils.NewPage(items, total, page, size), nil
}

func (s *LocalService[T]) Create(ctx context.Context, item T) (T, error) {
	return s.Store.Create(ctx, item.WithID(0))
}

func (s *LocalService[T]) Update(ctx context.Context, item T) (T, error) {
	return s.Store.Update(ctx, item)
}

func (s *LocalService[T]) Delete(ctx context.Context, id int) error {
	return s.Store.Delete(ctx, id)
}
