package model

// ListQuery holds the normalized parameters of a book listing.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Genre     *string
	Author    *string
	InStock   *bool
}

// Pagination is the envelope returned alongside a page of books.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// NewPagination computes the envelope for a page of a listing with total
// matching rows.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}
