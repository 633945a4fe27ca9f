package handler

import "github.com/snnyvrz/shelfshare-books/internal/model"

type BookResponse struct {
	Success bool       `json:"success" example:"true"`
	Data    model.Book `json:"data"`
}

type BookCreatedResponse struct {
	Success bool       `json:"success" example:"true"`
	Message string     `json:"message" example:"Book created successfully"`
	Data    model.Book `json:"data"`
}

type ListBooksResponse struct {
	Success    bool             `json:"success" example:"true"`
	Data       []model.Book     `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

type SearchBooksResponse struct {
	Success bool         `json:"success" example:"true"`
	Count   int          `json:"count" example:"1"`
	Data    []model.Book `json:"data"`
}

type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Book deleted successfully"`
}

type RouteNotFoundResponse struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"Route not found"`
	Path      string `json:"path" example:"/api/nope"`
	Method    string `json:"method" example:"GET"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

func nonNil(books []model.Book) []model.Book {
	if books == nil {
		return []model.Book{}
	}
	return books
}
