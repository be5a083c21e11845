// Package users provides database operations for library member management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByID(id)
package users

import (
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateUser inserts a new user. The password hash must already be computed
// by the auth layer.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether a user with the given ID exists.
func (r *Repository) UserExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListUsers returns users matching the search term (full name or username)
// with pagination.
func (r *Repository) ListUsers(search string, limit, offset int) ([]entities.User, int64, error) {
	var users []entities.User
	var total int64

	query := r.db.Model(&entities.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(full_name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?)", pattern, pattern)
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

	err := query.Order("full_name ASC").Find(&users).Error
	return users, total, err
}

// FindUserIDsByName returns the IDs of users whose full name matches the
// search term. Used by the loan and fine listings to search by borrower.
func (r *Repository) FindUserIDsByName(search string) ([]uint, error) {
	var ids []uint
	pattern := "%" + search + "%"
	err := r.db.Model(&entities.User{}).
		Where("LOWER(full_name) LIKE LOWER(?)", pattern).
		Pluck("id", &ids).Error
	return ids, err
}

// HasOutstandingLoans reports whether the user still holds any copy. A loan
// is outstanding exactly when its return date is unset; this is the sole
// predicate blocking user deletion.
func (r *Repository) HasOutstandingLoans(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("user_id = ? AND return_date IS NULL", userID).
		Count(&count).Error
	return count > 0, err
}

// DeleteUser soft-deletes a user. Callers must check HasOutstandingLoans
// first; this method only removes the row.
func (r *Repository) DeleteUser(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
