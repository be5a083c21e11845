package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleLibrarian UserRole = "librarian"
	UserRoleMember    UserRole = "member"
)

// ReturnStatus describes the condition of a copy at return time.
type ReturnStatus string

const (
	ReturnStatusOK    ReturnStatus = "ok"
	ReturnStatusBreak ReturnStatus = "break"
	ReturnStatusLost  ReturnStatus = "lost"
)

// Valid reports whether s is one of the known return statuses.
func (s ReturnStatus) Valid() bool {
	switch s {
	case ReturnStatusOK, ReturnStatusBreak, ReturnStatusLost:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer:
		return true
	}
	return false
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	FullName     string         `gorm:"index;size:256" json:"full_name"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	Role         UserRole       `gorm:"size:20;default:'member'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Book struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index;size:512" json:"title"`
	Author      string `gorm:"index;size:256" json:"author"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	ISBN        string `gorm:"index;size:20" json:"isbn,omitempty"`
	Publisher   string `gorm:"size:256" json:"publisher,omitempty"`
	Language    string `gorm:"size:50" json:"language,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`

	// Quantity is the number of copies currently on the shelf. It is only
	// ever changed through ReserveCopy/ReleaseCopy so it can never go
	// negative.
	Quantity int `gorm:"not null;default:0" json:"quantity"`

	// Price is the replacement cost, charged as the fine when a copy comes
	// back damaged or not at all. Whole currency units.
	Price int64 `gorm:"not null;default:0" json:"price"`

	// BorrowedTurnsCount counts how many times any copy has been checked
	// out. Informational, never decremented.
	BorrowedTurnsCount int64 `gorm:"not null;default:0" json:"borrowed_turns_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BorrowRecord is one loan of one copy to one user. A record with a nil
// ReturnDate is outstanding; setting ReturnDate is a one-shot transition.
type BorrowRecord struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`
	BookID uint `gorm:"index;not null" json:"book_id"`

	DueDate    time.Time    `gorm:"not null" json:"due_date"`
	ReturnDate *time.Time   `gorm:"index" json:"return_date,omitempty"`
	Status     ReturnStatus `gorm:"size:10;default:'ok'" json:"status"`
	FineID     *uint        `gorm:"index" json:"fine_id,omitempty"`
	Note       string       `gorm:"size:500" json:"note,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Outstanding reports whether the copy has not been returned yet.
func (r *BorrowRecord) Outstanding() bool {
	return r.ReturnDate == nil
}

// IsOverdue reports whether the loan is outstanding past its due date.
func (r *BorrowRecord) IsOverdue() bool {
	return r.IsOverdueAt(time.Now())
}

// IsOverdueAt is IsOverdue evaluated against an explicit clock.
func (r *BorrowRecord) IsOverdueAt(now time.Time) bool {
	return r.Outstanding() && now.After(r.DueDate)
}

// OverdueDays returns how many whole days the loan is (or was) late.
// For a returned loan it measures actual lateness at return time; for an
// outstanding loan it is a live counter against the current time. Never
// negative.
func (r *BorrowRecord) OverdueDays() int {
	return r.OverdueDaysAt(time.Now())
}

// OverdueDaysAt is OverdueDays evaluated against an explicit clock.
func (r *BorrowRecord) OverdueDaysAt(now time.Time) int {
	ref := now
	if r.ReturnDate != nil {
		ref = *r.ReturnDate
	}
	days := int(ref.Sub(r.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Fine is a monetary penalty tied to a loan's return event. Its lifetime is
// independent of the record that produced it: the record keeps a
// back-reference, nothing more.
type Fine struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	UserID         uint `gorm:"index;not null" json:"user_id"`
	BorrowRecordID uint `gorm:"index;not null" json:"borrow_record_id"`

	Amount int64  `gorm:"not null" json:"amount"`
	Reason string `gorm:"size:256;not null" json:"reason"`

	Paid          bool          `gorm:"not null;default:false" json:"paid"`
	PaidDate      *time.Time    `json:"paid_date,omitempty"`
	PaymentMethod PaymentMethod `gorm:"size:20" json:"payment_method,omitempty"`
	CollectedByID *uint         `json:"collected_by_id,omitempty"`

	User        User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CollectedBy *User         `gorm:"foreignKey:CollectedByID" json:"collected_by,omitempty"`
	BorrowRecord *BorrowRecord `gorm:"foreignKey:BorrowRecordID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}

func (Fine) TableName() string {
	return "fines"
}
