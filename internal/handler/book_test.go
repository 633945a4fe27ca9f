package handler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snnyvrz/shelfshare-books/internal/model"
	"github.com/snnyvrz/shelfshare-books/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orwell = `{
	"title": "1984",
	"author": "George Orwell",
	"isbn": "978-0451524935",
	"publication_year": 1949,
	"price": 15.99
}`

func TestCreateBook_Success(t *testing.T) {
	router := setupBookRouterWithRepo(repository.NewMemoryBookRepository())

	w := performRequest(router, http.MethodPost, "/api/books", orwell)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeJSON[BookCreatedResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Book created successfully", resp.Message)
	assert.Positive(t, resp.Data.ID)
	assert.Equal(t, "1984", resp.Data.Title)
	assert.Equal(t, "George Orwell", resp.Data.Author)
	assert.Equal(t, "978-0451524935", *resp.Data.ISBN)
	assert.Equal(t, 1949, *resp.Data.PublicationYear)
	assert.Equal(t, 15.99, *resp.Data.Price)
	assert.True(t, resp.Data.InStock)
	assert.Nil(t, resp.Data.Genre)
	assert.Nil(t, resp.Data.Pages)
	assert.False(t, resp.Data.CreatedAt.IsZero())
}

func TestCreateBook_ThenGetReturnsSameRecord(t *testing.T) {
	router := setupBookRouterWithRepo(repository.NewMemoryBookRepository())

	w := performRequest(router, http.MethodPost, "/api/books", orwell)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[BookCreatedResponse](t, w).Data

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/books/%d", created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON[BookResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, created, resp.Data)
}

func TestCreateBook_TrimsStringsAndRoundsPrice(t *testing.T) {
	router := setupBookRouterWithRepo(repository.NewMemoryBookRepository())

	w := performRequest(router, http.MethodPost, "/api/books",
		`{"title":"  Dune ","author":"Frank Herbert","price":9.999,"in_stock":false}`)
	require.Equal(t, http.StatusCreated, w.Code)

	book := decodeJSON[BookCreatedResponse](t, w).Data
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 10.0, *book.Price)
	assert.False(t, book.InStock)
}

func TestCreateBook_DuplicateISBN(t *testing.T) {
	repo := repository.NewMemoryBookRepository()
	seedBook(t, repo, "Animal Farm", "George Orwell", "978-0451524935")
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodPost, "/api/books", orwell)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "A book with this ISBN already exists", decodeError(t, w).Error)
}

func TestCreateBook_StoreUniqueViolationIsConflict(t *testing.T) {
	repo := &fakeBookRepo{
		CreateFn: func(context.Context, model.BookFields) (*model.Book, error) {
			return nil, fmt.Errorf("insert book: %w", &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: "Key (isbn)=(978-0451524935) already exists.",
			})
		},
	}
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodPost, "/api/books", orwell)

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Duplicate entry", body.Error)
	assert.Contains(t, string(body.Details), "already exists")
}

func TestCreateBook_ValidationErrorsAreCollectedInFieldOrder(t *testing.T) {
	called := false
	repo := &fakeBookRepo{
		CreateFn: func(context.Context, model.BookFields) (*model.Book, error) {
			called = true
			return nil, nil
		},
	}
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodPost, "/api/books",
		`{"title":"   ","isbn":"abc","price":-1,"in_stock":"yes"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Equal(t, []string{"title", "author", "isbn", "price", "in_stock"}, fieldNames(body.Fields))
	assert.Equal(t, "Title must be between 1 and 255 characters", body.Fields[0].Message)
	assert.Equal(t, "Author is required", body.Fields[1].Message)
	assert.Equal(t, "yes", body.Fields[4].Value)
	assert.False(t, called)
}

func TestCreateBook_MalformedJSON(t *testing.T) {
	router := setupBookRouterWithRepo(&fakeBookRepo{})

	w := performRequest(router, http.MethodPost, "/api/books", `{"title":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", decodeError(t, w).Error)
}

func TestGetBookByID_NotFound(t *testing.T) {
	router := setupBookRouterWithRepo(repository.NewMemoryBookRepository())

	w := performRequest(router, http.MethodGet, "/api/books/999", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book with ID 999 not found", decodeError(t, w).Error)
}

func TestGetBookByID_InvalidID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", "1.5"} {
		t.Run(raw, func(t *testing.T) {
			router := setupBookRouterWithRepo(&fakeBookRepo{})

			w := performRequest(router, http.MethodGet, "/api/books/"+raw, "")

			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, []string{"id"}, fieldNames(body.Fields))
		})
	}
}

func TestUpdateBook_PartialFields(t *testing.T) {
	repo := repository.NewMemoryBookRepository()
	book := seedBook(t, repo, "Dune", "Frank Herbert", "")
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodPatch, fmt.Sprintf("/api/books/%d", book.ID),
		`{"genre":"Science Fiction","pages":412}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeJSON[BookResponse](t, w).Data
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Science Fiction", *updated.Genre)
	assert.Equal(t, 412, *updated.Pages)

	w = performRequest(router, http.MethodPut, fmt.Sprintf("/api/books/%d", book.ID), `{"genre":null}`)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := decodeJSON[BookResponse](t, w).Data
	assert.Nil(t, cleared.Genre)
	assert.Equal(t, 412, *cleared.Pages)
}

func TestUpdateBook_EmptyBodyIsNoop(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			repo := repository.NewMemoryBookRepository()
			book := seedBook(t, repo, "Dune", "Frank Herbert", "")
			router := setupBookRouterWithRepo(repo)

			for _, body := range []string{"", "{}"} {
				w := performRequest(router, method, fmt.Sprintf("/api/books/%d", book.ID), body)
				require.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, book, decodeJSON[BookResponse](t, w).Data)
			}
		})
	}
}

func TestUpdateBook_NotFound(t *testing.T) {
	router := setupBookRouterWithRepo(repository.NewMemoryBookRepository())

	w := performRequest(router, http.MethodPut, "/api/books/42", `{"title":"Emma"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book with ID 42 not found", decodeError(t, w).Error)
}

func TestUpdateBook_ISBNHeldByAnotherBook(t *testing.T) {
	repo := repository.NewMemoryBookRepository()
	seedBook(t, repo, "Animal Farm", "George Orwell", "978-0451526342")
	book := seedBook(t, repo, "1984", "George Orwell", "978-0451524935")
	router := setupBookRouterWithRepo(repo)
	path := fmt.Sprintf("/api/books/%d", book.ID)

	w := performRequest(router, http.MethodPatch, path, `{"isbn":"978-0451526342"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "A book with this ISBN already exists", decodeError(t, w).Error)

	w = performRequest(router, http.MethodPatch, path, `{"isbn":"978-0451524935","price":12.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12.5, *decodeJSON[BookResponse](t, w).Data.Price)
}

func TestUpdateBook_NullOnRequiredColumns(t *testing.T) {
	router := setupBookRouterWithRepo(&fakeBookRepo{})

	w := performRequest(router, http.MethodPatch, "/api/books/1", `{"title":null,"in_stock":null}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"title", "in_stock"}, fieldNames(decodeError(t, w).Fields))
}

func TestDeleteBook(t *testing.T) {
	repo := repository.NewMemoryBookRepository()
	book := seedBook(t, repo, "Dune", "Frank Herbert", "")
	router := setupBookRouterWithRepo(repo)
	path := fmt.Sprintf("/api/books/%d", book.ID)

	w := performRequest(router, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[MessageResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Book deleted successfully", resp.Message)

	w = performRequest(router, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBooks_DefaultsAndPagination(t *testing.T) {
	repo := repository.NewMemoryBookRepository()
	for i := range 3 {
		seedBook(t, repo, fmt.Sprintf("Book %d", i), "Author", "")
	}
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodGet, "/api/books?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON[ListBooksResponse](t, w)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, model.Pagination{CurrentPage: 1, TotalPages: 2, TotalItems: 3, ItemsPerPage: 2}, resp.Pagination)
}

func TestListBooks_PageBeyondLast(t *testing.T) {
	repo := repository.NewMemoryBookRepository()
	for i := range 3 {
		seedBook(t, repo, fmt.Sprintf("Book %d", i), "Author", "")
	}
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodGet, "/api/books?page=5&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Body.String(), `"data":[]`)
	resp := decodeJSON[ListBooksResponse](t, w)
	assert.Equal(t, model.Pagination{CurrentPage: 5, TotalPages: 2, TotalItems: 3, ItemsPerPage: 2}, resp.Pagination)
}

func TestListBooks_FiltersAndSortReachRepository(t *testing.T) {
	var got model.ListQuery
	repo := &fakeBookRepo{
		ListFn: func(_ context.Context, q model.ListQuery) (repository.BookListResult, error) {
			got = q
			return repository.BookListResult{Pagination: model.NewPagination(q.Page, q.Limit, 0)}, nil
		},
	}
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodGet,
		"/api/books?sortBy=price&sortOrder=asc&genre=fic&author=orw&inStock=false&page=2&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "price", got.SortBy)
	assert.Equal(t, "ASC", got.SortOrder)
	assert.Equal(t, "fic", *got.Genre)
	assert.Equal(t, "orw", *got.Author)
	assert.False(t, *got.InStock)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
}

func TestListBooks_RejectsUnlistedSortField(t *testing.T) {
	called := false
	repo := &fakeBookRepo{
		ListFn: func(context.Context, model.ListQuery) (repository.BookListResult, error) {
			called = true
			return repository.BookListResult{}, nil
		},
	}
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodGet, "/api/books?sortBy=title;DROP%20TABLE%20books", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"sortBy"}, fieldNames(decodeError(t, w).Fields))
	assert.False(t, called)
}

func TestListBooks_DatabaseUnavailable(t *testing.T) {
	repo := &fakeBookRepo{
		ListFn: func(context.Context, model.ListQuery) (repository.BookListResult, error) {
			return repository.BookListResult{}, fmt.Errorf("list books: %w",
				&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
		},
	}
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodGet, "/api/books", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Database connection failed", decodeError(t, w).Error)
}

func TestSearchBooks(t *testing.T) {
	repo := repository.NewMemoryBookRepository()
	seedBook(t, repo, "Nineteen Eighty-Four", "George Orwell", "")
	seedBook(t, repo, "Animal Farm", "George Orwell", "")
	seedBook(t, repo, "Dune", "Frank Herbert", "")
	router := setupBookRouterWithRepo(repo)

	w := performRequest(router, http.MethodGet, "/api/books/search?q=orwell", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON[SearchBooksResponse](t, w)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Animal Farm", resp.Data[0].Title)
	assert.Equal(t, "Nineteen Eighty-Four", resp.Data[1].Title)
}

func TestSearchBooks_NoMatches(t *testing.T) {
	router := setupBookRouterWithRepo(repository.NewMemoryBookRepository())

	w := performRequest(router, http.MethodGet, "/api/books/search?q=zz", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.JSONEq(t, `{"success":true,"count":0,"data":[]}`, w.Body.String())
}

func TestSearchBooks_InvalidTerm(t *testing.T) {
	router := setupBookRouterWithRepo(&fakeBookRepo{})

	for _, path := range []string{"/api/books/search", "/api/books/search?q=%20a%20"} {
		w := performRequest(router, http.MethodGet, path, "")
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, []string{"q"}, fieldNames(decodeError(t, w).Fields))
	}
}

func TestUnexpectedErrorMessageDependsOnEnvironment(t *testing.T) {
	repo := &fakeBookRepo{
		FindByIDFn: func(context.Context, int64) (*model.Book, error) {
			return nil, errors.New("scan book: unexpected column")
		},
	}

	w := performRequest(setupRouter(repo, false), http.MethodGet, "/api/books/1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "scan book: unexpected column", decodeError(t, w).Error)

	w = performRequest(setupRouter(repo, true), http.MethodGet, "/api/books/1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w).Error)
}

func TestCreateGetThenDuplicate(t *testing.T) {
	router := setupBookRouterWithRepo(repository.NewMemoryBookRepository())
	payload := `{"title":"1984","author":"George Orwell","isbn":"978-0-452-28423-4","publication_year":1949,"price":9.99}`

	w := performRequest(router, http.MethodPost, "/api/books", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"in_stock":true`)
	created := decodeJSON[BookCreatedResponse](t, w).Data

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/books/%d", created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeJSON[BookResponse](t, w).Data)

	w = performRequest(router, http.MethodPost, "/api/books", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, http.MethodGet, "/api/books", "")
	assert.Equal(t, int64(1), decodeJSON[ListBooksResponse](t, w).Pagination.TotalItems)
}
