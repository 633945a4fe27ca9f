package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/shelfshare-books/internal/apperror"
	"github.com/snnyvrz/shelfshare-books/internal/model"
	"github.com/snnyvrz/shelfshare-books/internal/repository"
	"github.com/snnyvrz/shelfshare-books/internal/validation"
)

type BookHandler struct {
	repo repository.BookRepository
}

func NewBookHandler(repo repository.BookRepository) *BookHandler {
	return &BookHandler{repo: repo}
}

func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/search", h.SearchBooks)
		books.GET("/:id", h.GetBookByID)
		books.POST("", h.CreateBook)
		books.PUT("/:id", h.UpdateBook)
		books.PATCH("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
	}
}

// ListBooks godoc
// @Summary      List books
// @Description  Paginated listing with optional filters and sorting
// @Tags         books
// @Produce      json
// @Param        page       query     int     false  "Page number"     default(1) minimum(1)
// @Param        limit      query     int     false  "Items per page"  default(10) minimum(1) maximum(100)
// @Param        sortBy     query     string  false  "Sort column"     Enums(id,title,author,publication_year,price,created_at) default(created_at)
// @Param        sortOrder  query     string  false  "Sort direction"  Enums(ASC,DESC) default(DESC)
// @Param        genre      query     string  false  "Case-insensitive genre substring"
// @Param        author     query     string  false  "Case-insensitive author substring"
// @Param        inStock    query     bool    false  "Stock filter"
// @Success      200  {object}  ListBooksResponse
// @Failure      400  {object}  apperror.ErrorResponse  "Invalid query parameters"
// @Failure      500  {object}  apperror.ErrorResponse  "Internal server error"
// @Failure      503  {object}  apperror.ErrorResponse  "Database unavailable"
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	q, err := validation.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		abortWithError(c, err)
		return
	}

	res, err := h.repo.List(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListBooksResponse{
		Success:    true,
		Data:       nonNil(res.Books),
		Pagination: res.Pagination,
	})
}

// SearchBooks godoc
// @Summary      Search books
// @Description  Case-insensitive match on title, author or description, ordered by title
// @Tags         books
// @Produce      json
// @Param        q    query     string  true  "Search term"  minlength(2) maxlength(100)
// @Success      200  {object}  SearchBooksResponse
// @Failure      400  {object}  apperror.ErrorResponse  "Invalid search term"
// @Failure      500  {object}  apperror.ErrorResponse  "Internal server error"
// @Router       /books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	term, err := validation.ParseSearchQuery(c.Request.URL.Query())
	if err != nil {
		abortWithError(c, err)
		return
	}

	books, err := h.repo.Search(c.Request.Context(), term)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SearchBooksResponse{
		Success: true,
		Count:   len(books),
		Data:    nonNil(books),
	})
}

// GetBookByID godoc
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"  minimum(1)
// @Success      200  {object}  BookResponse
// @Failure      400  {object}  apperror.ErrorResponse  "Invalid ID"
// @Failure      404  {object}  apperror.ErrorResponse  "Book not found"
// @Failure      500  {object}  apperror.ErrorResponse  "Internal server error"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	book, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if book == nil {
		abortWithError(c, bookNotFound(id))
		return
	}

	c.JSON(http.StatusOK, BookResponse{Success: true, Data: *book})
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Title and author are required; in_stock defaults to true
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body      validation.CreateBookRequest  true  "Book to create"
// @Success      201      {object}  BookCreatedResponse
// @Failure      400      {object}  apperror.ErrorResponse  "Validation error"
// @Failure      409      {object}  apperror.ErrorResponse  "Duplicate ISBN"
// @Failure      500      {object}  apperror.ErrorResponse  "Internal server error"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req validation.CreateBookRequest
	if err := readBody(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	fields, err := validation.CreateBook(req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	if err := h.ensureISBNAvailable(ctx, fields.ISBN, 0); err != nil {
		abortWithError(c, err)
		return
	}

	book, err := h.repo.Create(ctx, fields)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BookCreatedResponse{
		Success: true,
		Message: "Book created successfully",
		Data:    *book,
	})
}

// UpdateBook godoc
// @Summary      Update a book
// @Description  Only the supplied fields change; null clears optional fields. PUT and PATCH behave the same.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "Book ID"  minimum(1)
// @Param        payload  body      validation.UpdateBookRequest  true  "Fields to update"
// @Success      200      {object}  BookResponse
// @Failure      400      {object}  apperror.ErrorResponse  "Validation error"
// @Failure      404      {object}  apperror.ErrorResponse  "Book not found"
// @Failure      409      {object}  apperror.ErrorResponse  "Duplicate ISBN"
// @Failure      500      {object}  apperror.ErrorResponse  "Internal server error"
// @Router       /books/{id} [put]
// @Router       /books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req validation.UpdateBookRequest
	if err := readBody(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	fields, err := validation.UpdateBook(req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	if err := h.ensureISBNAvailable(ctx, fields.ISBN, id); err != nil {
		abortWithError(c, err)
		return
	}

	book, err := h.repo.Update(ctx, id, fields)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if book == nil {
		abortWithError(c, bookNotFound(id))
		return
	}

	c.JSON(http.StatusOK, BookResponse{Success: true, Data: *book})
}

// DeleteBook godoc
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"  minimum(1)
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  apperror.ErrorResponse  "Invalid ID"
// @Failure      404  {object}  apperror.ErrorResponse  "Book not found"
// @Failure      500  {object}  apperror.ErrorResponse  "Internal server error"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !deleted {
		abortWithError(c, bookNotFound(id))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Book deleted successfully"})
}

// ensureISBNAvailable rejects an isbn already held by a book other than id.
// The store's unique constraint still backs this check under concurrent writes.
func (h *BookHandler) ensureISBNAvailable(ctx context.Context, isbn model.Optional[string], id int64) error {
	if !isbn.Valid() {
		return nil
	}

	existing, err := h.repo.FindByISBN(ctx, isbn.Value)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != id {
		return apperror.Conflict("A book with this ISBN already exists", map[string]string{"isbn": isbn.Value})
	}
	return nil
}

func bookNotFound(id int64) error {
	return apperror.NotFound(fmt.Sprintf("Book with ID %d not found", id))
}

func readBody(c *gin.Context, dst any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return apperror.BadRequest("Could not read request body", err.Error())
	}
	return validation.DecodeBody(body, dst)
}
