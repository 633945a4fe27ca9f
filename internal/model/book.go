package model

import "time"

// Book is a single persisted row of the books table.
type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	ISBN            *string   `json:"isbn" db:"isbn"`
	PublicationYear *int      `json:"publication_year" db:"publication_year"`
	Genre           *string   `json:"genre" db:"genre"`
	Pages           *int      `json:"pages" db:"pages"`
	Description     *string   `json:"description" db:"description"`
	Price           *float64  `json:"price" db:"price"`
	InStock         bool      `json:"in_stock" db:"in_stock"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// BookFields carries the client-writable columns of a book. A field that is
// not Set is left untouched by an update and defaulted by a create.
type BookFields struct {
	Title           Optional[string]
	Author          Optional[string]
	ISBN            Optional[string]
	PublicationYear Optional[int]
	Genre           Optional[string]
	Pages           Optional[int]
	Description     Optional[string]
	Price           Optional[float64]
	InStock         Optional[bool]
}

// Empty reports whether no field is present.
func (f BookFields) Empty() bool {
	return !f.Title.Set && !f.Author.Set && !f.ISBN.Set &&
		!f.PublicationYear.Set && !f.Genre.Set && !f.Pages.Set &&
		!f.Description.Set && !f.Price.Set && !f.InStock.Set
}
