// Package loans provides database operations for borrow records.
//
// The one-shot nature of a return lives here: CloseRecord only matches rows
// whose return date is still unset, so a second return attempt affects zero
// rows and the caller can reject it without a read-modify-write race.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// ListFilter selects which records a listing returns.
type ListFilter string

const (
	FilterAll         ListFilter = "all"
	FilterNotReturned ListFilter = "not-returned"
)

// Repository handles all borrow record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateRecord inserts a new outstanding borrow record.
func (r *Repository) CreateRecord(record *entities.BorrowRecord) error {
	return r.db.Create(record).Error
}

// GetRecordByID retrieves a record with its borrower and book attached.
// Related rows are loaded explicitly per call; there are no query hooks.
func (r *Repository) GetRecordByID(id uint) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord
	err := r.db.Preload("User").Preload("Book").First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRecord retrieves a bare record without related rows. Used inside the
// return transaction where only the record's own fields matter.
func (r *Repository) GetRecord(id uint) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord
	err := r.db.First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CloseRecord marks a record returned. The update is conditional on the
// record still being outstanding; it reports whether the transition was
// applied. A false result with nil error means the record was already
// closed or does not exist; callers distinguish via GetRecord.
func (r *Repository) CloseRecord(id uint, returnDate time.Time, status entities.ReturnStatus, note string) (bool, error) {
	fields := map[string]any{
		"return_date": returnDate,
		"status":      status,
	}
	if note != "" {
		fields["note"] = note
	}

	result := r.db.Model(&entities.BorrowRecord{}).
		Where("id = ? AND return_date IS NULL", id).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetFine attaches the fine produced by a return to its record. Written at
// most once, in the same transaction as CloseRecord.
func (r *Repository) SetFine(recordID, fineID uint) error {
	return r.db.Model(&entities.BorrowRecord{}).
		Where("id = ?", recordID).
		Update("fine_id", fineID).Error
}

// ListRecords returns borrow records with pagination. userIDs, when
// non-nil, restricts to those borrowers (used for name search).
func (r *Repository) ListRecords(filter ListFilter, userIDs []uint, limit, offset int) ([]entities.BorrowRecord, int64, error) {
	var records []entities.BorrowRecord
	var total int64

	query := r.db.Model(&entities.BorrowRecord{})
	if filter == FilterNotReturned {
		query = query.Where("return_date IS NULL")
	}
	if userIDs != nil {
		query = query.Where("user_id IN ?", userIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("User").Preload("Book").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&records).Error
	return records, total, err
}

// ListOverdueOutstanding returns every outstanding record whose due date has
// passed. Consumed by the overdue scan.
func (r *Repository) ListOverdueOutstanding(now time.Time) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("User").Preload("Book").
		Where("return_date IS NULL AND due_date < ?", now).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

// CountRecords returns the total number of borrow records ever created.
func (r *Repository) CountRecords() (int64, error) {
	var count int64
	err := r.db.Model(&entities.BorrowRecord{}).Count(&count).Error
	return count, err
}

// MonthlyStats holds borrow/return counts for one calendar month.
type MonthlyStats struct {
	Month    string `json:"month"` // YYYY-MM
	Borrowed int64  `json:"borrowed"`
	Returned int64  `json:"returned"`
}

// CountByMonth returns borrow and return counts for the last n calendar
// months, oldest first.
func (r *Repository) CountByMonth(now time.Time, n int) ([]MonthlyStats, error) {
	stats := make([]MonthlyStats, 0, n)

	for i := n - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
		end := start.AddDate(0, 1, 0)

		var borrowed int64
		err := r.db.Model(&entities.BorrowRecord{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&borrowed).Error
		if err != nil {
			return nil, err
		}

		var returned int64
		err = r.db.Model(&entities.BorrowRecord{}).
			Where("return_date >= ? AND return_date < ?", start, end).
			Count(&returned).Error
		if err != nil {
			return nil, err
		}

		stats = append(stats, MonthlyStats{
			Month:    start.Format("2006-01"),
			Borrowed: borrowed,
			Returned: returned,
		})
	}

	return stats, nil
}
