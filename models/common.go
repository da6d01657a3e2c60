package models

// Entity is implemented by every record served through the generic CRUD handlers.
// WithID returns a copy of the record carrying the given identifier.
type Entity[T any] interface {
	EntityID() int
	WithID(id int) T
}

// PaginationMetadata holds information about the pagination state.
type PaginationMetadata struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// Page is the paginated response envelope shared by every list endpoint.
type Page[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

// ListResponse wraps unpaginated collections as {"data": [...]}.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}
