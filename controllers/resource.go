package controllers

import (
	"context"
	"net/http"

	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/utils"
)

// Resource serves list/search, get, create, update and delete for one entity type.
type Resource[T models.Entity[T]] struct {
	Store    repository.Store[T]
	NotFound string   // message for 404 responses
	Filters  []string // integer query parameters forwarded to the store

	// BeforeSave may complete or reject a decoded record before it is stored.
	BeforeSave func(r *http.Request, item T) (T, error)
	// AfterChange runs after every successful mutation.
	AfterChange func(ctx context.Context)
	// AfterDelete receives the record that was deleted.
	AfterDelete func(ctx context.Context, item T)
}

// List handles GET on the collection: paginated, searchable with ?q=, and
// unpaginated with ?all=true. A page past the end is answered with the last page.
func (res *Resource[T]) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := repository.Query{Search: searchTerm(r), Filters: intFilters(r, res.Filters)}

		if r.URL.Query().Get("all") == "true" {
			items, _, err := res.Store.List(r.Context(), q)
			if err != nil {
				respondError(w, r, err, res.NotFound)
				return
			}
			utils.RespondJSON(w, http.StatusOK, models.ListResponse[T]{Data: items})
			return
		}

		page, size := utils.GetPaginationParams(r)
		q.Limit, q.Offset = size, utils.Offset(page, size)
		items, total, err := res.Store.List(r.Context(), q)
		if err != nil {
			respondError(w, r, err, res.NotFound)
			return
		}

		if last := utils.TotalPages(total, size); len(items) == 0 && last > 0 && page > last {
			page = last
			q.Offset = utils.Offset(page, size)
			if items, total, err = res.Store.List(r.Context(), q); err != nil {
				respondError(w, r, err, res.NotFound)
				return
			}
		}

		utils.RespondJSON(w, http.StatusOK, utils.NewPage(items, total, page, size))
	}
}

// Get handles GET on a single record.
func (res *Resource[T]) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		item, err := res.Store.Get(r.Context(), id)
		if err != nil {
			respondError(w, r, err, res.NotFound)
			return
		}
		utils.RespondJSON(w, http.StatusOK, item)
	}
}

// Create handles POST on the collection.
func (res *Resource[T]) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if !utils.DecodeAndValidate(w, r, &item) {
			return
		}
		item = item.WithID(0)
		res.save(w, r, item, http.StatusCreated, res.Store.Create)
	}
}

// Update handles PUT on a record. The id in the URL wins over the body.
func (res *Resource[T]) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var item T
		if !utils.DecodeAndValidate(w, r, &item) {
			return
		}
		item = item.WithID(id)
		res.save(w, r, item, http.StatusOK, res.Store.Update)
	}
}

func (res *Resource[T]) save(w http.ResponseWriter, r *http.Request, item T, status int, op func(context.Context, T) (T, error)) {
	var err error
	if res.BeforeSave != nil {
		if item, err = res.BeforeSave(r, item); err != nil {
			respondError(w, r, err, res.NotFound)
			return
		}
	}
	saved, err := op(r.Context(), item)
	if err != nil {
		respondError(w, r, err, res.NotFound)
		return
	}
	if res.AfterChange != nil {
		res.AfterChange(r.Context())
	}
	utils.RespondJSON(w, status, saved)
}

// Delete handles DELETE on a record.
func (res *Resource[T]) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var deleted T
		if res.AfterDelete != nil {
			item, err := res.Store.Get(r.Context(), id)
			if err != nil {
				respondError(w, r, err, res.NotFound)
				return
			}
			deleted = item
		}

		if err := res.Store.Delete(r.Context(), id); err != nil {
			respondError(w, r, err, res.NotFound)
			return
		}
		if res.AfterChange != nil {
			res.AfterChange(r.Context())
		}
		if res.AfterDelete != nil {
			res.AfterDelete(r.Context(), deleted)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
