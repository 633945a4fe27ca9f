package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snnyvrz/shelfshare-books/internal/model"
)

// MemoryBookRepository keeps books in process memory with the same
// semantics as the Postgres table, including the unique isbn constraint
// and the updated_at trigger. It backs handler tests.
type MemoryBookRepository struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]model.Book
	now    func() time.Time
}

func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{
		nextID: 1,
		books:  make(map[int64]model.Book),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

var _ BookRepository = (*MemoryBookRepository)(nil)

func (r *MemoryBookRepository) List(_ context.Context, q model.ListQuery) (BookListResult, error) {
	if _, err := orderBy(q.SortBy, q.SortOrder); err != nil {
		return BookListResult{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		if q.Genre != nil && !containsFold(deref(b.Genre), *q.Genre) {
			continue
		}
		if q.Author != nil && !containsFold(b.Author, *q.Author) {
			continue
		}
		if q.InStock != nil && b.InStock != *q.InStock {
			continue
		}
		matched = append(matched, b)
	}

	slices.SortStableFunc(matched, func(a, b model.Book) int {
		c := cmp.Or(compareColumn(a, b, q.SortBy), cmp.Compare(a.ID, b.ID))
		if q.SortOrder == "DESC" {
			c = -c
		}
		return c
	})

	total := int64(len(matched))
	start := min((q.Page-1)*q.Limit, len(matched))
	end := min(start+q.Limit, len(matched))

	return BookListResult{
		Books:      slices.Clone(matched[start:end]),
		Pagination: model.NewPagination(q.Page, q.Limit, total),
	}, nil
}

func (r *MemoryBookRepository) FindByID(_ context.Context, id int64) (*model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *MemoryBookRepository) FindByISBN(_ context.Context, isbn string) (*model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.books {
		if b.ISBN != nil && *b.ISBN == isbn {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *MemoryBookRepository) Create(_ context.Context, fields model.BookFields) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b := model.Book{
		ID:        r.nextID,
		InStock:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(&b, fields)

	if err := r.checkUnique(b); err != nil {
		return nil, err
	}

	r.books[b.ID] = b
	r.nextID++
	return &b, nil
}

func (r *MemoryBookRepository) Update(_ context.Context, id int64, fields model.BookFields) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	if fields.Empty() {
		return &b, nil
	}

	apply(&b, fields)
	if err := r.checkUnique(b); err != nil {
		return nil, err
	}

	b.UpdatedAt = r.now()
	r.books[id] = b
	return &b, nil
}

func (r *MemoryBookRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return false, nil
	}
	delete(r.books, id)
	return true, nil
}

func (r *MemoryBookRepository) Search(_ context.Context, term string) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]model.Book, 0)
	for _, b := range r.books {
		if containsFold(b.Title, term) || containsFold(b.Author, term) || containsFold(deref(b.Description), term) {
			found = append(found, b)
		}
	}

	slices.SortStableFunc(found, func(a, b model.Book) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})
	return found, nil
}

func (r *MemoryBookRepository) checkUnique(b model.Book) error {
	if b.ISBN == nil {
		return nil
	}
	for id, other := range r.books {
		if id != b.ID && other.ISBN != nil && *other.ISBN == *b.ISBN {
			return &pgconn.PgError{
				Severity:       "ERROR",
				Code:           pgerrcode.UniqueViolation,
				Message:        `duplicate key value violates unique constraint "books_isbn_key"`,
				Detail:         fmt.Sprintf("Key (isbn)=(%s) already exists.", *b.ISBN),
				TableName:      booksTable,
				ConstraintName: "books_isbn_key",
			}
		}
	}
	return nil
}

func apply(b *model.Book, f model.BookFields) {
	if f.Title.Valid() {
		b.Title = f.Title.Value
	}
	if f.Author.Valid() {
		b.Author = f.Author.Value
	}
	if f.InStock.Valid() {
		b.InStock = f.InStock.Value
	}
	setNullable(&b.ISBN, f.ISBN)
	setNullable(&b.PublicationYear, f.PublicationYear)
	setNullable(&b.Genre, f.Genre)
	setNullable(&b.Pages, f.Pages)
	setNullable(&b.Description, f.Description)
	setNullable(&b.Price, f.Price)
}

func setNullable[T any](dst **T, o model.Optional[T]) {
	if o.Set {
		*dst = o.Ptr()
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// compareNullable orders NULL after every value, as Postgres does for ASC.
func compareNullable[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

func compareColumn(a, b model.Book, column string) int {
	switch column {
	case colID:
		return cmp.Compare(a.ID, b.ID)
	case colTitle:
		return cmp.Compare(a.Title, b.Title)
	case colAuthor:
		return cmp.Compare(a.Author, b.Author)
	case colPubYear:
		return compareNullable(a.PublicationYear, b.PublicationYear)
	case colPrice:
		return compareNullable(a.Price, b.Price)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
