package container

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/kelydev/apiTramite/models"
)

// View is a snapshot of a container, everything a page renders.
type View[T any] struct {
	Items      []T
	Pagination models.PaginationMetadata
	Term       string
	Selected   *T

	FormOpen    bool
	FormLoading bool // catalogs of the form are still loading
	DeleteOpen  bool
	SuccessOpen bool
	ErrorOpen   bool
	NoResults   bool
	Message     string // text of the success or error modal

	Loading    bool
	HasFetched bool
}

// ShowEmpty reports whether the "no records" placeholder should be shown.
// It stays false until the first fetch has completed.
func (v View[T]) ShowEmpty() bool {
	return v.HasFetched && len(v.Items) == 0
}

// Options configure a container.
type Options[T any] struct {
	PageSize int
	// LoadCatalogs fetches the reference data the form needs before it becomes interactive.
	LoadCatalogs func(ctx context.Context) error
	// OnChange receives a snapshot after every state change.
	OnChange func(View[T])
}

// Container drives one resource page. It is safe for concurrent use; service
// calls run without holding the lock.
type Container[T models.Entity[T]] struct {
	svc  Service[T]
	opts Options[T]

	mu   sync.Mutex
	view View[T]
	gen  uint64 // incremented by every fetch; older responses are dropped
}

func New[T models.Entity[T]](svc Service[T], opts Options[T]) *Container[T] {
	if opts.PageSize < 1 {
		opts.PageSize = 6
	}
	return &Container[T]{
		svc:  svc,
		opts: opts,
		view: View[T]{
			Items:      []T{},
			Pagination: models.PaginationMetadata{CurrentPage: 1, PageSize: opts.PageSize},
		},
	}
}

// View returns a copy of the current state.
func (c *Container[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Container[T]) snapshot() View[T] {
	v := c.view
	v.Items = slices.Clone(c.view.Items)
	if c.view.Selected != nil {
		sel := *c.view.Selected
		v.Selected = &sel
	}
	return v
}

// update applies fn under the lock and publishes the result.
func (c *Container[T]) update(fn func(v *View[T])) {
	c.mu.Lock()
	fn(&c.view)
	snap := c.snapshot()
	c.mu.Unlock()
	c.publish(snap)
}

func (c *Container[T]) publish(v View[T]) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(v)
	}
}

func fail[T any](v *View[T], err error) {
	v.ErrorOpen = true
	v.Message = MessageFor(err)
}

// fetch loads page using the current search term.
func (c *Container[T]) fetch(ctx context.Context, page int) error {
	c.mu.Lock()
	c.gen++
	gen, term, size := c.gen, c.view.Term, c.opts.PageSize
	c.view.Loading = true
	snap := c.snapshot()
	c.mu.Unlock()
	c.publish(snap)

	var (
		p   models.Page[T]
		err error
	)
	if term == "" {
		p, err = c.svc.List(ctx, page, size)
	} else {
		p, err = c.svc.Search(ctx, term, page, size)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	v := &c.view
	v.Loading = false
	if err != nil {
		fail(v, err)
	} else {
		v.Items = p.Data
		if v.Items == nil {
			v.Items = []T{}
		}
		v.Pagination = p.Pagination
		v.HasFetched = true
		if term != "" && len(p.Data) == 0 {
			v.NoResults = true
			v.Message = MsgNoResults
		}
	}
	snap = c.snapshot()
	c.mu.Unlock()
	c.publish(snap)
	return err
}

// Load fetches the current page.
func (c *Container[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	page := c.view.Pagination.CurrentPage
	c.mu.Unlock()
	return c.fetch(ctx, max(page, 1))
}

// GoToPage fetches page. Pages outside [1, totalPages] and the current page are ignored.
func (c *Container[T]) GoToPage(ctx context.Context, page int) error {
	c.mu.Lock()
	p := c.view.Pagination
	c.mu.Unlock()
	if page < 1 || page > max(p.TotalPages, 1) || page == p.CurrentPage {
		return nil
	}
	return c.fetch(ctx, page)
}

// Search filters by term from the first page. A blank term restores the unfiltered list.
func (c *Container[T]) Search(ctx context.Context, term string) error {
	c.update(func(v *View[T]) {
		v.Term = strings.TrimSpace(term)
		v.NoResults = false
	})
	return c.fetch(ctx, 1)
}

// OpenCreate opens the form for a new record.
func (c *Container[T]) OpenCreate(ctx context.Context) error {
	var zero T
	return c.openForm(ctx, zero)
}

// OpenEdit opens the form for item.
func (c *Container[T]) OpenEdit(ctx context.Context, item T) error {
	return c.openForm(ctx, item)
}

func (c *Container[T]) openForm(ctx context.Context, item T) error {
	loader := c.opts.LoadCatalogs
	c.update(func(v *View[T]) {
		v.Selected = &item
		v.FormOpen = true
		v.FormLoading = loader != nil
	})
	if loader == nil {
		return nil
	}

	err := loader(ctx)
	c.update(func(v *View[T]) {
		if !v.FormOpen {
			return
		}
		v.FormLoading = false
		if err != nil {
			v.FormOpen = false
			v.Selected = nil
			fail(v, err)
		}
	})
	return err
}

// OpenDelete asks for confirmation before deleting item.
func (c *Container[T]) OpenDelete(item T) {
	c.update(func(v *View[T]) {
		v.Selected = &item
		v.DeleteOpen = true
	})
}

// ConfirmDelete deletes the selected record and refetches. When the record
// was the only row of a page after the first, or the page comes back empty,
// the previous page is loaded.
func (c *Container[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if !c.view.DeleteOpen || c.view.Selected == nil {
		c.mu.Unlock()
		return nil
	}
	id := (*c.view.Selected).EntityID()
	c.mu.Unlock()

	if err := c.svc.Delete(ctx, id); err != nil {
		c.update(func(v *View[T]) {
			v.DeleteOpen = false
			v.Selected = nil
			fail(v, err)
		})
		return err
	}

	var page int
	c.update(func(v *View[T]) {
		v.DeleteOpen = false
		v.Selected = nil
		v.SuccessOpen = true
		v.Message = MsgDeleted
		page = v.Pagination.CurrentPage
		onPage := slices.ContainsFunc(v.Items, func(it T) bool { return it.EntityID() == id })
		if onPage && len(v.Items) == 1 && page > 1 {
			page--
		}
	})
	if err := c.fetch(ctx, max(page, 1)); err != nil {
		return err
	}

	c.mu.Lock()
	p := c.view.Pagination
	empty := len(c.view.Items) == 0 && !c.view.ErrorOpen
	c.mu.Unlock()
	if empty && p.CurrentPage > 1 {
		return c.fetch(ctx, p.CurrentPage-1)
	}
	return nil
}

// Submit creates item when it has no id and updates it otherwise, then
// refetches the current page. On failure the form stays open.
func (c *Container[T]) Submit(ctx context.Context, item T) error {
	var err error
	msg := MsgUpdated
	if item.EntityID() == 0 {
		msg = MsgCreated
		_, err = c.svc.Create(ctx, item)
	} else {
		_, err = c.svc.Update(ctx, item)
	}

	if err != nil {
		c.update(func(v *View[T]) { fail(v, err) })
		return err
	}

	var page int
	c.update(func(v *View[T]) {
		v.FormOpen = false
		v.FormLoading = false
		v.Selected = nil
		v.SuccessOpen = true
		v.Message = msg
		page = v.Pagination.CurrentPage
	})
	return c.fetch(ctx, max(page, 1))
}

// Cancel closes the form or delete confirmation and clears the selection.
func (c *Container[T]) Cancel() {
	c.update(func(v *View[T]) {
		v.FormOpen = false
		v.FormLoading = false
		v.DeleteOpen = false
		v.Selected = nil
	})
}

// Dismiss closes the success, error and no-results modals.
func (c *Container[T]) Dismiss() {
	c.update(func(v *View[T]) {
		v.SuccessOpen = false
		v.ErrorOpen = false
		v.NoResults = false
		v.Message = ""
	})
}
