// Package repository reads and writes book rows.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/snnyvrz/shelfshare-books/internal/model"
)

// BookRepository is the storage contract the handlers depend on. Lookups
// report an absent row as a nil book and a nil error.
type BookRepository interface {
	List(ctx context.Context, q model.ListQuery) (BookListResult, error)
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	Create(ctx context.Context, fields model.BookFields) (*model.Book, error)
	Update(ctx context.Context, id int64, fields model.BookFields) (*model.Book, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, term string) ([]model.Book, error)
}

type BookListResult struct {
	Books      []model.Book
	Pagination model.Pagination
}

// Querier runs one parameterized statement. *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresBookRepository struct {
	db Querier
}

func NewPostgresBookRepository(db Querier) *PostgresBookRepository {
	return &PostgresBookRepository{db: db}
}

var _ BookRepository = (*PostgresBookRepository)(nil)

func (r *PostgresBookRepository) queryBooks(ctx context.Context, q sqlQuery) ([]model.Book, error) {
	rows, err := r.db.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
}

func (r *PostgresBookRepository) queryBook(ctx context.Context, q sqlQuery) (*model.Book, error) {
	rows, err := r.db.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}

	book, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Book])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return book, err
}

func (r *PostgresBookRepository) List(ctx context.Context, q model.ListQuery) (BookListResult, error) {
	listQ, err := buildListQuery(q)
	if err != nil {
		return BookListResult{}, err
	}
	countQ, err := buildCountQuery(q)
	if err != nil {
		return BookListResult{}, err
	}

	books, err := r.queryBooks(ctx, listQ)
	if err != nil {
		return BookListResult{}, fmt.Errorf("list books: %w", err)
	}

	rows, err := r.db.Query(ctx, countQ.sql, countQ.args...)
	if err != nil {
		return BookListResult{}, fmt.Errorf("count books: %w", err)
	}
	total, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return BookListResult{}, fmt.Errorf("count books: %w", err)
	}

	return BookListResult{
		Books:      books,
		Pagination: model.NewPagination(q.Page, q.Limit, total),
	}, nil
}

func (r *PostgresBookRepository) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	q, err := buildFindByQuery(colID, id)
	if err != nil {
		return nil, err
	}

	book, err := r.queryBook(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find book %d: %w", id, err)
	}
	return book, nil
}

func (r *PostgresBookRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	q, err := buildFindByQuery(colISBN, isbn)
	if err != nil {
		return nil, err
	}

	book, err := r.queryBook(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find book by isbn: %w", err)
	}
	return book, nil
}

func (r *PostgresBookRepository) Create(ctx context.Context, fields model.BookFields) (*model.Book, error) {
	q, err := buildInsertQuery(fields)
	if err != nil {
		return nil, err
	}

	book, err := r.queryBook(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	if book == nil {
		return nil, errors.New("insert book: no row returned")
	}
	return book, nil
}

// Update writes only the fields present in fields. It returns nil when the
// row does not exist and the current row when there is nothing to write.
// updated_at is maintained by the table trigger.
func (r *PostgresBookRepository) Update(ctx context.Context, id int64, fields model.BookFields) (*model.Book, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}

	q, ok, err := buildUpdateQuery(id, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return existing, nil
	}

	book, err := r.queryBook(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("update book %d: %w", id, err)
	}
	return book, nil
}

func (r *PostgresBookRepository) Delete(ctx context.Context, id int64) (bool, error) {
	q, err := buildDeleteQuery(id)
	if err != nil {
		return false, err
	}

	rows, err := r.db.Query(ctx, q.sql, q.args...)
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	return len(ids) > 0, nil
}

func (r *PostgresBookRepository) Search(ctx context.Context, term string) ([]model.Book, error) {
	q, err := buildSearchQuery(term)
	if err != nil {
		return nil, err
	}

	books, err := r.queryBooks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}
