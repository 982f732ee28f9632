package services

import (
	"context"
	"errors"

	"github.com/VtlBz/foodgram-project/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Default and maximum page sizes of paginated lists.
const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

const notFoundMessage = "Страница не найдена."

// Page selects one page of a list. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into range. A size below 1 becomes
// defaultSize.
func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult is one page of items plus the total count of the list.
type PageResult[T any] struct {
	Count int64
	Items []T
}

// HasNext reports whether a page follows p.
func (r PageResult[T]) HasNext(p Page) bool {
	return int64(p.Number*p.Size) < r.Count
}

// quiet runs queries bound to ctx without logging, for lookups where a
// missing row is an expected outcome.
func quiet(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound app error.
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound(notFoundMessage)
	}
	return err
}
