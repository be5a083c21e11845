// Package lending implements the circulation core: issuing loans, taking
// returns, assessing fines and recording fine payments. It is the only
// place that mutates more than one entity per operation, and every such
// mutation runs inside a single database transaction so a failure midway
// leaves no partial state behind.
package lending

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/fines"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

// Service coordinates inventory, borrow records and fines.
type Service struct {
	db    *gorm.DB
	books *books.Repository
	users *users.Repository
	loans *loans.Repository
	fines *fines.Repository
	audit *audit.Service

	penaltyPerDay int64
	maxLoanDays   int
	now           func() time.Time
}

// NewService creates a lending service. auditService may be nil; penalty
// falls back to the default per-day rate when zero.
func NewService(db *gorm.DB, auditService *audit.Service, penaltyPerDay int64) *Service {
	if penaltyPerDay <= 0 {
		penaltyPerDay = DefaultOverduePenaltyPerDay
	}
	return &Service{
		db:            db,
		books:         books.NewRepository(db),
		users:         users.NewRepository(db),
		loans:         loans.NewRepository(db),
		fines:         fines.NewRepository(db),
		audit:         auditService,
		penaltyPerDay: penaltyPerDay,
		now:           time.Now,
	}
}

// WithMaxLoanDays caps how far in the future a due date may be. Zero means
// no cap.
func (s *Service) WithMaxLoanDays(days int) *Service {
	s.maxLoanDays = days
	return s
}

// CreateLoan checks a copy out to a user. Preconditions are checked in a
// fixed order (user, then book availability, then due date already
// validated up front) so the caller always sees the first failing one.
// The copy reservation and the record insert commit together.
//
// Concurrent loans of the same book by the same user are allowed; the
// source system never deduplicated them and callers depend on that.
func (s *Service) CreateLoan(userID, bookID uint, dueDate time.Time) (*entities.BorrowRecord, error) {
	if !dueDate.After(s.now()) {
		return nil, fmt.Errorf("%w: due date must be in the future", ErrInvalidInput)
	}
	if s.maxLoanDays > 0 && dueDate.After(s.now().AddDate(0, 0, s.maxLoanDays)) {
		return nil, fmt.Errorf("%w: loan length exceeds %d days", ErrInvalidInput, s.maxLoanDays)
	}

	var record *entities.BorrowRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		exists, err := s.users.WithTx(tx).UserExists(userID)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		if err := s.books.WithTx(tx).ReserveCopy(bookID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, bookID)
			}
			if errors.Is(err, books.ErrNoCopies) {
				return fmt.Errorf("%w: book %d", ErrUnavailable, bookID)
			}
			return fmt.Errorf("reserve copy: %w", err)
		}

		record = &entities.BorrowRecord{
			UserID:  userID,
			BookID:  bookID,
			DueDate: dueDate,
			Status:  entities.ReturnStatusOK,
		}
		if err := s.loans.WithTx(tx).CreateRecord(record); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogLoanCreated(userID, record.ID, bookID, dueDate)
	}

	return record, nil
}

// ReturnLoan closes an outstanding record. In one transaction it marks the
// record returned, creates the assessed fine (if any), links it to the
// record, and puts the copy back on the shelf when it came back undamaged.
// Damaged and lost copies stay out of circulation. A record that was
// already returned yields ErrInvalidState and is left untouched.
func (s *Service) ReturnLoan(recordID uint, status entities.ReturnStatus, note string) (*entities.BorrowRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown return status %q", ErrInvalidInput, status)
	}

	returnDate := s.now()
	var record *entities.BorrowRecord
	var spec *FineSpec

	err := s.db.Transaction(func(tx *gorm.DB) error {
		loansTx := s.loans.WithTx(tx)

		var err error
		record, err = loansTx.GetRecord(recordID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: borrow record %d", ErrNotFound, recordID)
			}
			return fmt.Errorf("load record: %w", err)
		}

		book, err := s.books.WithTx(tx).GetBookByID(record.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, record.BookID)
			}
			return fmt.Errorf("load book: %w", err)
		}

		closed, err := loansTx.CloseRecord(recordID, returnDate, status, note)
		if err != nil {
			return fmt.Errorf("close record: %w", err)
		}
		if !closed {
			// The record existed a moment ago, so a zero-row update
			// means it is already returned.
			return fmt.Errorf("%w: borrow record %d already returned", ErrInvalidState, recordID)
		}

		record.ReturnDate = &returnDate
		record.Status = status
		if note != "" {
			record.Note = note
		}

		spec = Assess(status, returnDate, record.DueDate, book.Price, s.penaltyPerDay)
		if spec != nil {
			fine := &entities.Fine{
				UserID:         record.UserID,
				BorrowRecordID: record.ID,
				Amount:         spec.Amount,
				Reason:         spec.Reason,
			}
			if err := s.fines.WithTx(tx).CreateFine(fine); err != nil {
				return fmt.Errorf("create fine: %w", err)
			}
			if err := loansTx.SetFine(record.ID, fine.ID); err != nil {
				return fmt.Errorf("link fine: %w", err)
			}
			record.FineID = &fine.ID
		}

		if status == entities.ReturnStatusOK {
			if err := s.books.WithTx(tx).ReleaseCopy(record.BookID); err != nil {
				return fmt.Errorf("release copy: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogLoanReturned(record.UserID, record.ID, status)
		if spec != nil {
			s.audit.LogFineAssessed(record.UserID, *record.FineID, spec.Amount, spec.Reason)
		}
	}

	return record, nil
}

// PayFine records a payment against an unpaid fine. Paying a fine twice is
// rejected with ErrInvalidState; the first payment's method, date and
// collector are never overwritten.
func (s *Service) PayFine(fineID uint, method entities.PaymentMethod, collectorID uint) (*entities.Fine, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, method)
	}

	paid, err := s.fines.MarkPaid(fineID, method, collectorID, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	if !paid {
		exists, err := s.fines.FineExists(fineID)
		if err != nil {
			return nil, fmt.Errorf("check fine: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: fine %d", ErrNotFound, fineID)
		}
		return nil, fmt.Errorf("%w: fine %d already paid", ErrInvalidState, fineID)
	}

	fine, err := s.fines.GetFineByID(fineID)
	if err != nil {
		return nil, fmt.Errorf("reload fine: %w", err)
	}

	if s.audit != nil {
		s.audit.LogFinePaid(fine.UserID, fine.ID, fine.Amount, collectorID)
	}

	return fine, nil
}
