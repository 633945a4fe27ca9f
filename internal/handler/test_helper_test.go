package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/shelfshare-books/internal/model"
	"github.com/snnyvrz/shelfshare-books/internal/repository"
	"github.com/stretchr/testify/require"
)

type fakeBookRepo struct {
	ListFn       func(ctx context.Context, q model.ListQuery) (repository.BookListResult, error)
	FindByIDFn   func(ctx context.Context, id int64) (*model.Book, error)
	FindByISBNFn func(ctx context.Context, isbn string) (*model.Book, error)
	CreateFn     func(ctx context.Context, fields model.BookFields) (*model.Book, error)
	UpdateFn     func(ctx context.Context, id int64, fields model.BookFields) (*model.Book, error)
	DeleteFn     func(ctx context.Context, id int64) (bool, error)
	SearchFn     func(ctx context.Context, term string) ([]model.Book, error)
}

func (f *fakeBookRepo) List(ctx context.Context, q model.ListQuery) (repository.BookListResult, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, q)
	}
	return repository.BookListResult{Pagination: model.NewPagination(q.Page, q.Limit, 0)}, nil
}

func (f *fakeBookRepo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if f.FindByISBNFn != nil {
		return f.FindByISBNFn(ctx, isbn)
	}
	return nil, nil
}

func (f *fakeBookRepo) Create(ctx context.Context, fields model.BookFields) (*model.Book, error) {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, fields)
	}
	return &model.Book{ID: 1, Title: fields.Title.Value, Author: fields.Author.Value, InStock: true}, nil
}

func (f *fakeBookRepo) Update(ctx context.Context, id int64, fields model.BookFields) (*model.Book, error) {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, id, fields)
	}
	return nil, nil
}

func (f *fakeBookRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return false, nil
}

func (f *fakeBookRepo) Search(ctx context.Context, term string) ([]model.Book, error) {
	if f.SearchFn != nil {
		return f.SearchFn(ctx, term)
	}
	return nil, nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRouter(repo repository.BookRepository, production bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	return NewRouter(RouterOptions{
		Books:      repo,
		Health:     NewHealthHandler(fakePinger{}, time.Now(), "test"),
		Logger:     discardLogger(),
		Version:    "test",
		Production: production,
	})
}

func setupBookRouterWithRepo(repo repository.BookRepository) *gin.Engine {
	return setupRouter(repo, false)
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Success   bool             `json:"success"`
	Error     string           `json:"error"`
	Details   json.RawMessage  `json:"details"`
	Timestamp string           `json:"timestamp"`
	Fields    []fieldErrorBody `json:"-"`
}

type fieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body=%s", w.Body.String())
	return v
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()

	body := decodeJSON[errorBody](t, w)
	require.False(t, body.Success)
	require.NotEmpty(t, body.Timestamp)

	if len(body.Details) > 0 && body.Details[0] == '[' {
		require.NoError(t, json.Unmarshal(body.Details, &body.Fields))
	}
	return body
}

func fieldNames(fields []fieldErrorBody) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}

func seedBook(t *testing.T, repo *repository.MemoryBookRepository, title, author string, isbn string) model.Book {
	t.Helper()

	fields := model.BookFields{
		Title:  model.Some(title),
		Author: model.Some(author),
	}
	if isbn != "" {
		fields.ISBN = model.Some(isbn)
	}

	book, err := repo.Create(context.Background(), fields)
	require.NoError(t, err)
	return *book
}
