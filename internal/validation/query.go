package validation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/snnyvrz/shelfshare-books/internal/model"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	DefaultSortBy    = "created_at"
	DefaultSortOrder = "DESC"
)

// SortFields are the columns a listing may be ordered by.
var SortFields = []string{"id", "title", "author", "publication_year", "price", "created_at"}

// ParseID validates an id path parameter.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || validate.Var(id, "min=1") != nil {
		return 0, Failed(Errors{{
			Field:   "id",
			Message: "ID must be a positive integer",
			Value:   raw,
		}})
	}
	return id, nil
}

type queryRule struct {
	param string
	tag   string
	msg   string
}

var (
	pageRule      = queryRule{"page", "min=1", "Page must be a positive integer"}
	limitRule     = queryRule{"limit", "min=1,max=100", "Limit must be between 1 and 100"}
	sortByRule    = queryRule{"sortBy", "oneof=" + strings.Join(SortFields, " "), "Invalid sort field"}
	sortOrderRule = queryRule{"sortOrder", "oneof=ASC DESC", "Sort order must be ASC or DESC"}
	genreRule     = queryRule{"genre", "max=100", "Genre must be at most 100 characters"}
	authorRule    = queryRule{"author", "max=255", "Author must be at most 255 characters"}
	inStockRule   = queryRule{"inStock", "oneof=true false", "inStock must be true or false"}
	searchRule    = queryRule{"q", "min=2,max=100", "Search query must be between 2 and 100 characters"}
)

type queryChecker struct {
	values url.Values
	errs   Errors
}

func (c *queryChecker) fail(r queryRule, value any) {
	c.errs = append(c.errs, FieldError{Field: r.param, Message: r.msg, Value: value})
}

// str returns the trimmed parameter and whether it was supplied non-empty.
func (c *queryChecker) str(r queryRule) (string, bool) {
	v := strings.TrimSpace(c.values.Get(r.param))
	if v == "" {
		return "", false
	}
	if validate.Var(v, r.tag) != nil {
		c.fail(r, v)
		return "", false
	}
	return v, true
}

func (c *queryChecker) integer(r queryRule, def int) int {
	raw := strings.TrimSpace(c.values.Get(r.param))
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil || validate.Var(n, r.tag) != nil {
		c.fail(r, raw)
		return def
	}
	return n
}

// ParseListQuery validates the query string of GET /api/books.
func ParseListQuery(values url.Values) (model.ListQuery, error) {
	c := &queryChecker{values: values}

	q := model.ListQuery{
		Page:      c.integer(pageRule, DefaultPage),
		Limit:     c.integer(limitRule, DefaultLimit),
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}

	if v, ok := c.str(sortByRule); ok {
		q.SortBy = v
	}

	if raw := strings.TrimSpace(values.Get(sortOrderRule.param)); raw != "" {
		upper := strings.ToUpper(raw)
		if validate.Var(upper, sortOrderRule.tag) != nil {
			c.fail(sortOrderRule, raw)
		} else {
			q.SortOrder = upper
		}
	}

	if v, ok := c.str(genreRule); ok {
		q.Genre = &v
	}
	if v, ok := c.str(authorRule); ok {
		q.Author = &v
	}
	if v, ok := c.str(inStockRule); ok {
		b := v == "true"
		q.InStock = &b
	}

	if len(c.errs) > 0 {
		return model.ListQuery{}, Failed(c.errs)
	}
	return q, nil
}

// ParseSearchQuery validates the q parameter of GET /api/books/search.
func ParseSearchQuery(values url.Values) (string, error) {
	term := strings.TrimSpace(values.Get(searchRule.param))
	if term == "" {
		return "", Failed(Errors{{Field: "q", Message: "Search query is required", Value: values.Get("q")}})
	}

	if validate.Var(term, searchRule.tag) != nil {
		return "", Failed(Errors{{Field: "q", Message: searchRule.msg, Value: term}})
	}
	return term, nil
}
