// Package books provides database operations for the catalog and the copy
// inventory. Copy counts are only ever changed through ReserveCopy and
// ReleaseCopy, both of which mutate atomically in SQL so concurrent
// checkouts can never drive quantity below zero.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	err := repo.ReserveCopy(bookID)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// ErrNoCopies is returned by ReserveCopy when the book exists but every
// copy is out on loan.
var ErrNoCopies = errors.New("no copies available")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateBook inserts a new catalog entry.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetBookByID retrieves a book by ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns catalog entries matching the search term (title or
// author, case-insensitive) with pagination.
func (r *Repository) ListBooks(search string, limit, offset int) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	query := r.db.Model(&entities.Book{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Order("title ASC").Find(&books).Error
	return books, total, err
}

// BookUpdate is the allow-listed set of catalog fields a caller may change.
// Inventory counters are deliberately absent: quantity moves only through
// ReserveCopy/ReleaseCopy.
type BookUpdate struct {
	Title       *string
	Author      *string
	Description *string
	ISBN        *string
	Publisher   *string
	Language    *string
	PageCount   *int
	Price       *int64
}

// UpdateBook applies the non-nil fields of update to the book.
func (r *Repository) UpdateBook(id uint, update BookUpdate) (*entities.Book, error) {
	fields := map[string]any{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Author != nil {
		fields["author"] = *update.Author
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.ISBN != nil {
		fields["isbn"] = *update.ISBN
	}
	if update.Publisher != nil {
		fields["publisher"] = *update.Publisher
	}
	if update.Language != nil {
		fields["language"] = *update.Language
	}
	if update.PageCount != nil {
		fields["page_count"] = *update.PageCount
	}
	if update.Price != nil {
		fields["price"] = *update.Price
	}

	if len(fields) > 0 {
		result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	return r.GetBookByID(id)
}

// DeleteBook soft-deletes a catalog entry.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReserveCopy takes one copy off the shelf for a checkout. The decrement is
// conditional on quantity > 0 in a single statement, so two concurrent
// reservations of the last copy cannot both succeed. The borrow counter is
// bumped in the same statement.
func (r *Repository) ReserveCopy(id uint) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND quantity > 0", id).
		UpdateColumns(map[string]any{
			"quantity":             gorm.Expr("quantity - 1"),
			"borrowed_turns_count": gorm.Expr("borrowed_turns_count + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the book is gone or the shelf is empty.
		var count int64
		if err := r.db.Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrNoCopies
	}
	return nil
}

// ReleaseCopy puts a copy back on the shelf after an undamaged return.
// Damaged and lost copies are never released: they are out of circulation
// for good.
func (r *Repository) ReleaseCopy(id uint) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
