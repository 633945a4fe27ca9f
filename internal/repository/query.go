package repository

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/snnyvrz/shelfshare-books/internal/model"
)

const (
	dialectPostgres = "postgres"
	booksTable      = "books"

	colID          = "id"
	colTitle       = "title"
	colAuthor      = "author"
	colISBN        = "isbn"
	colPubYear     = "publication_year"
	colGenre       = "genre"
	colPages       = "pages"
	colDescription = "description"
	colPrice       = "price"
	colInStock     = "in_stock"
	colCreatedAt   = "created_at"
	colUpdatedAt   = "updated_at"
)

var (
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

var bookColumns = []any{
	colID, colTitle, colAuthor, colISBN, colPubYear, colGenre, colPages,
	colDescription, colPrice, colInStock, colCreatedAt, colUpdatedAt,
}

// sortColumns is the only source of identifiers for ORDER BY.
var sortColumns = map[string]exp.IdentifierExpression{
	colID:        goqu.C(colID),
	colTitle:     goqu.C(colTitle),
	colAuthor:    goqu.C(colAuthor),
	colPubYear:   goqu.C(colPubYear),
	colPrice:     goqu.C(colPrice),
	colCreatedAt: goqu.C(colCreatedAt),
}

type writableColumn struct {
	name  string
	value func(model.BookFields) (any, bool)
}

// writableColumns is the only source of identifiers for INSERT and SET.
var writableColumns = []writableColumn{
	{colTitle, func(f model.BookFields) (any, bool) { return arg(f.Title) }},
	{colAuthor, func(f model.BookFields) (any, bool) { return arg(f.Author) }},
	{colISBN, func(f model.BookFields) (any, bool) { return arg(f.ISBN) }},
	{colPubYear, func(f model.BookFields) (any, bool) { return arg(f.PublicationYear) }},
	{colGenre, func(f model.BookFields) (any, bool) { return arg(f.Genre) }},
	{colPages, func(f model.BookFields) (any, bool) { return arg(f.Pages) }},
	{colDescription, func(f model.BookFields) (any, bool) { return arg(f.Description) }},
	{colPrice, func(f model.BookFields) (any, bool) { return arg(f.Price) }},
	{colInStock, func(f model.BookFields) (any, bool) { return arg(f.InStock) }},
}

// arg reports the bound value of a field and whether the field was sent.
// Null fields bind SQL NULL.
func arg[T any](o model.Optional[T]) (any, bool) {
	if !o.Set {
		return nil, false
	}
	if !o.Valid() {
		return nil, true
	}
	return o.Value, true
}

type sqlQuery struct {
	sql  string
	args []any
}

func build(ds interface {
	ToSQL() (string, []any, error)
}) (sqlQuery, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return sqlQuery{}, fmt.Errorf("build query: %w", err)
	}
	return sqlQuery{sql: sql, args: args}, nil
}

func dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func containsPattern(term string) string {
	return "%" + term + "%"
}

func listFilters(q model.ListQuery) []exp.Expression {
	var filters []exp.Expression

	if q.Genre != nil {
		filters = append(filters, goqu.C(colGenre).ILike(containsPattern(*q.Genre)))
	}
	if q.Author != nil {
		filters = append(filters, goqu.C(colAuthor).ILike(containsPattern(*q.Author)))
	}
	if q.InStock != nil {
		filters = append(filters, goqu.C(colInStock).Eq(*q.InStock))
	}

	return filters
}

func orderBy(sortBy, sortOrder string) (exp.OrderedExpression, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, sortBy)
	}

	switch sortOrder {
	case "ASC":
		return col.Asc(), nil
	case "DESC":
		return col.Desc(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidSortOrder, sortOrder)
}

func buildListQuery(q model.ListQuery) (sqlQuery, error) {
	order, err := orderBy(q.SortBy, q.SortOrder)
	if err != nil {
		return sqlQuery{}, err
	}

	offset := (q.Page - 1) * q.Limit

	return build(dialect().
		From(booksTable).
		Prepared(true).
		Select(bookColumns...).
		Where(listFilters(q)...).
		Order(order).
		Limit(uint(q.Limit)).
		Offset(uint(offset)))
}

func buildCountQuery(q model.ListQuery) (sqlQuery, error) {
	return build(dialect().
		From(booksTable).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(listFilters(q)...))
}

func buildFindByQuery(column string, value any) (sqlQuery, error) {
	return build(dialect().
		From(booksTable).
		Prepared(true).
		Select(bookColumns...).
		Where(goqu.C(column).Eq(value)).
		Limit(1))
}

func buildSearchQuery(term string) (sqlQuery, error) {
	pattern := containsPattern(term)

	return build(dialect().
		From(booksTable).
		Prepared(true).
		Select(bookColumns...).
		Where(goqu.Or(
			goqu.C(colTitle).ILike(pattern),
			goqu.C(colAuthor).ILike(pattern),
			goqu.C(colDescription).ILike(pattern),
		)).
		Order(goqu.C(colTitle).Asc()))
}

func buildInsertQuery(f model.BookFields) (sqlQuery, error) {
	record := goqu.Record{}
	for _, c := range writableColumns {
		v, _ := c.value(f)
		record[c.name] = v
	}
	if !f.InStock.Valid() {
		record[colInStock] = true
	}

	return build(dialect().
		Insert(booksTable).
		Prepared(true).
		Rows(record).
		Returning(bookColumns...))
}

// buildUpdateQuery returns ok=false when f carries no field to change.
func buildUpdateQuery(id int64, f model.BookFields) (q sqlQuery, ok bool, err error) {
	record := goqu.Record{}
	for _, c := range writableColumns {
		if v, set := c.value(f); set {
			record[c.name] = v
		}
	}
	if len(record) == 0 {
		return sqlQuery{}, false, nil
	}

	q, err = build(dialect().
		Update(booksTable).
		Prepared(true).
		Set(record).
		Where(goqu.C(colID).Eq(id)).
		Returning(bookColumns...))
	return q, err == nil, err
}

func buildDeleteQuery(id int64) (sqlQuery, error) {
	return build(dialect().
		Delete(booksTable).
		Prepared(true).
		Where(goqu.C(colID).Eq(id)).
		Returning(colID))
}
