// Package fines provides database operations for fines and their payment.
//
// Payment is a one-shot transition enforced in SQL: MarkPaid only matches
// unpaid rows, so paying twice never overwrites the first payment.
package fines

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles all fine database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new fines repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateFine inserts a newly assessed, unpaid fine.
func (r *Repository) CreateFine(fine *entities.Fine) error {
	return r.db.Create(fine).Error
}

// GetFineByID retrieves a fine with the liable user attached.
func (r *Repository) GetFineByID(id uint) (*entities.Fine, error) {
	var fine entities.Fine
	err := r.db.Preload("User").Preload("CollectedBy").First(&fine, id).Error
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// ListFines returns fines with pagination. paid, when non-nil, filters on
// the payment flag; userIDs, when non-nil, restricts to those users.
func (r *Repository) ListFines(paid *bool, userIDs []uint, limit, offset int) ([]entities.Fine, int64, error) {
	var fines []entities.Fine
	var total int64

	query := r.db.Model(&entities.Fine{})
	if paid != nil {
		query = query.Where("paid = ?", *paid)
	}
	if userIDs != nil {
		query = query.Where("user_id IN ?", userIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("User").Preload("CollectedBy").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&fines).Error
	return fines, total, err
}

// MarkPaid records a payment against an unpaid fine. The update is
// conditional on paid = false; it reports whether the payment was applied.
// A false result with nil error means the fine was already paid or absent;
// callers distinguish via GetFineByID.
func (r *Repository) MarkPaid(id uint, method entities.PaymentMethod, collectorID uint, paidDate time.Time) (bool, error) {
	result := r.db.Model(&entities.Fine{}).
		Where("id = ? AND paid = ?", id, false).
		Updates(map[string]any{
			"paid":            true,
			"paid_date":       paidDate,
			"payment_method":  method,
			"collected_by_id": collectorID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FineExists reports whether a fine with the given ID exists.
func (r *Repository) FineExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Fine{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UnpaidTotalForUser sums the outstanding fine amounts of one user.
func (r *Repository) UnpaidTotalForUser(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&entities.Fine{}).
		Where("user_id = ? AND paid = ?", userID, false).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
