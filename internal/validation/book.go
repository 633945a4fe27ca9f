package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/snnyvrz/shelfshare-books/internal/apperror"
	"github.com/snnyvrz/shelfshare-books/internal/model"
)

// CreateBookRequest is the body of POST /api/books.
type CreateBookRequest struct {
	Title           model.Optional[string]  `json:"title" validate:"required,min=1,max=255" swaggertype:"string" example:"1984"`
	Author          model.Optional[string]  `json:"author" validate:"required,min=1,max=255" swaggertype:"string" example:"George Orwell"`
	ISBN            model.Optional[string]  `json:"isbn" validate:"omitempty,min=10,max=20,isbn" swaggertype:"string" example:"978-0-452-28423-4"`
	PublicationYear model.Optional[int]     `json:"publication_year" validate:"omitempty,min=1000,maxyear" swaggertype:"integer" example:"1949"`
	Genre           model.Optional[string]  `json:"genre" validate:"omitempty,max=100" swaggertype:"string" example:"Dystopian"`
	Pages           model.Optional[int]     `json:"pages" validate:"omitempty,min=1,max=50000" swaggertype:"integer" example:"328"`
	Description     model.Optional[string]  `json:"description" validate:"omitempty,max=5000" swaggertype:"string"`
	Price           model.Optional[float64] `json:"price" validate:"omitempty,min=0,max=1000000" swaggertype:"number" example:"9.99"`
	InStock         model.Optional[bool]    `json:"in_stock" swaggertype:"boolean" example:"true"`
}

// UpdateBookRequest is the body of PUT and PATCH /api/books/{id}. Every
// field is optional; nullable columns are cleared by an explicit null.
type UpdateBookRequest struct {
	Title           model.Optional[string]  `json:"title" validate:"omitempty,min=1,max=255" swaggertype:"string"`
	Author          model.Optional[string]  `json:"author" validate:"omitempty,min=1,max=255" swaggertype:"string"`
	ISBN            model.Optional[string]  `json:"isbn" validate:"omitempty,min=10,max=20,isbn" swaggertype:"string"`
	PublicationYear model.Optional[int]     `json:"publication_year" validate:"omitempty,min=1000,maxyear" swaggertype:"integer"`
	Genre           model.Optional[string]  `json:"genre" validate:"omitempty,max=100" swaggertype:"string"`
	Pages           model.Optional[int]     `json:"pages" validate:"omitempty,min=1,max=50000" swaggertype:"integer"`
	Description     model.Optional[string]  `json:"description" validate:"omitempty,max=5000" swaggertype:"string"`
	Price           model.Optional[float64] `json:"price" validate:"omitempty,min=0,max=1000000" swaggertype:"number"`
	InStock         model.Optional[bool]    `json:"in_stock" swaggertype:"boolean"`
}

func updateBookStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(UpdateBookRequest)

	if req.Title.IsNull() {
		sl.ReportError(nil, "title", "Title", "notnull", "")
	}
	if req.Author.IsNull() {
		sl.ReportError(nil, "author", "Author", "notnull", "")
	}
	if req.InStock.IsNull() {
		sl.ReportError(nil, "in_stock", "InStock", "notnull", "")
	}
}

// DecodeBody unmarshals a JSON request body. An empty body decodes as {}.
func DecodeBody(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperror.BadRequest("Invalid JSON body", err.Error())
	}
	return nil
}

// CreateBook validates a create payload and returns the fields to insert.
func CreateBook(req CreateBookRequest) (model.BookFields, error) {
	req.Title, req.Author, req.ISBN = trim(req.Title), trim(req.Author), trim(req.ISBN)
	req.Genre, req.Description = trim(req.Genre), trim(req.Description)
	req.Price = roundPrice(req.Price)

	if errs := checkStruct(&req); len(errs) > 0 {
		return model.BookFields{}, Failed(errs)
	}

	// a create has no previous row, so null and absent mean the same
	if req.InStock.IsNull() {
		req.InStock = model.Optional[bool]{}
	}

	return model.BookFields{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
		Pages:           req.Pages,
		Description:     req.Description,
		Price:           req.Price,
		InStock:         req.InStock,
	}, nil
}

// UpdateBook validates an update payload and returns only the fields the
// client sent.
func UpdateBook(req UpdateBookRequest) (model.BookFields, error) {
	req.Title, req.Author, req.ISBN = trim(req.Title), trim(req.Author), trim(req.ISBN)
	req.Genre, req.Description = trim(req.Genre), trim(req.Description)
	req.Price = roundPrice(req.Price)

	if errs := checkStruct(&req); len(errs) > 0 {
		return model.BookFields{}, Failed(errs)
	}

	return model.BookFields{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
		Pages:           req.Pages,
		Description:     req.Description,
		Price:           req.Price,
		InStock:         req.InStock,
	}, nil
}

func trim(o model.Optional[string]) model.Optional[string] {
	if o.Valid() {
		o.Value = strings.TrimSpace(o.Value)
	}
	return o
}

// roundPrice keeps two fractional digits, matching the NUMERIC(10,2) column.
func roundPrice(o model.Optional[float64]) model.Optional[float64] {
	if o.Valid() {
		o.Value = math.Round(o.Value*100) / 100
	}
	return o
}
