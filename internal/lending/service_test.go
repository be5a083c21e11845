package lending

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupLendingTest(t *testing.T) (*gorm.DB, *Service, func()) {
	t.Helper()

	dbPath := "./test_lending_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	service := NewService(db.DB, nil, 0)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, service, cleanup
}

func createMember(t *testing.T, db *gorm.DB, name string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username: strings.ToLower(strings.ReplaceAll(name, " ", "")),
		FullName: name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.org",
		Role:     entities.UserRoleMember,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBook(t *testing.T, db *gorm.DB, title string, quantity int, price int64) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:    title,
		Author:   "Test Author",
		Quantity: quantity,
		Price:    price,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestService_CreateLoan(t *testing.T) {
	t.Run("decrements quantity and creates record", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Alice Reader")
		book := createBook(t, db, "Dune", 2, 30000)
		due := time.Now().AddDate(0, 0, 14)

		record, err := service.CreateLoan(user.ID, book.ID, due)
		require.NoError(t, err)
		assert.Equal(t, user.ID, record.UserID)
		assert.Equal(t, book.ID, record.BookID)
		assert.Nil(t, record.ReturnDate)
		assert.Equal(t, entities.ReturnStatusOK, record.Status)

		var reloaded entities.Book
		require.NoError(t, db.First(&reloaded, book.ID).Error)
		assert.Equal(t, 1, reloaded.Quantity)
		assert.Equal(t, int64(1), reloaded.BorrowedTurnsCount)
	})

	t.Run("rejects past due date", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Bob Reader")
		book := createBook(t, db, "Dune", 1, 30000)

		_, err := service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, -1))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects loan length over the cap", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()
		service.WithMaxLoanDays(30)

		user := createMember(t, db, "Cara Reader")
		book := createBook(t, db, "Dune", 1, 30000)

		_, err := service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, 45))
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, 14))
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		book := createBook(t, db, "Dune", 1, 30000)

		_, err := service.CreateLoan(999, book.ID, time.Now().AddDate(0, 0, 14))
		assert.ErrorIs(t, err, ErrNotFound)

		// The failed loan must not have touched the inventory.
		var reloaded entities.Book
		require.NoError(t, db.First(&reloaded, book.ID).Error)
		assert.Equal(t, 1, reloaded.Quantity)
	})

	t.Run("unknown book", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Dan Reader")

		_, err := service.CreateLoan(user.ID, 999, time.Now().AddDate(0, 0, 14))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no copies left", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Eve Reader")
		other := createMember(t, db, "Finn Reader")
		book := createBook(t, db, "Dune", 1, 30000)
		due := time.Now().AddDate(0, 0, 14)

		_, err := service.CreateLoan(user.ID, book.ID, due)
		require.NoError(t, err)

		_, err = service.CreateLoan(other.ID, book.ID, due)
		assert.ErrorIs(t, err, ErrUnavailable)

		var reloaded entities.Book
		require.NoError(t, db.First(&reloaded, book.ID).Error)
		assert.Equal(t, 0, reloaded.Quantity)
	})

	t.Run("same user may hold the same title twice", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Gail Reader")
		book := createBook(t, db, "Dune", 2, 30000)
		due := time.Now().AddDate(0, 0, 14)

		_, err := service.CreateLoan(user.ID, book.ID, due)
		require.NoError(t, err)
		_, err = service.CreateLoan(user.ID, book.ID, due)
		assert.NoError(t, err)
	})
}

func TestService_ReturnLoan(t *testing.T) {
	t.Run("on-time return restores quantity without a fine", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Alice Reader")
		book := createBook(t, db, "Dune", 1, 30000)

		record, err := service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, 14))
		require.NoError(t, err)

		returned, err := service.ReturnLoan(record.ID, entities.ReturnStatusOK, "")
		require.NoError(t, err)
		require.NotNil(t, returned.ReturnDate)
		assert.Nil(t, returned.FineID)

		var reloaded entities.Book
		require.NoError(t, db.First(&reloaded, book.ID).Error)
		assert.Equal(t, 1, reloaded.Quantity)
	})

	t.Run("late return creates a per-day fine", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Bob Reader")
		book := createBook(t, db, "Dune", 1, 30000)

		record, err := service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, 14))
		require.NoError(t, err)

		// Move the clock five days past the due date.
		service.now = func() time.Time { return record.DueDate.Add(5 * 24 * time.Hour) }

		returned, err := service.ReturnLoan(record.ID, entities.ReturnStatusOK, "")
		require.NoError(t, err)
		require.NotNil(t, returned.FineID)

		var fine entities.Fine
		require.NoError(t, db.First(&fine, *returned.FineID).Error)
		assert.Equal(t, int64(5000), fine.Amount)
		assert.Equal(t, user.ID, fine.UserID)
		assert.Equal(t, record.ID, fine.BorrowRecordID)
		assert.False(t, fine.Paid)

		// Undamaged copy goes back on the shelf even when late.
		var reloaded entities.Book
		require.NoError(t, db.First(&reloaded, book.ID).Error)
		assert.Equal(t, 1, reloaded.Quantity)
	})

	t.Run("lost copy charges replacement price and stays off the shelf", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Cara Reader")
		book := createBook(t, db, "Dune", 1, 150000)

		record, err := service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, 14))
		require.NoError(t, err)

		returned, err := service.ReturnLoan(record.ID, entities.ReturnStatusLost, "reported lost")
		require.NoError(t, err)
		require.NotNil(t, returned.FineID)
		assert.Equal(t, "reported lost", returned.Note)

		var fine entities.Fine
		require.NoError(t, db.First(&fine, *returned.FineID).Error)
		assert.Equal(t, int64(150000), fine.Amount)

		var reloaded entities.Book
		require.NoError(t, db.First(&reloaded, book.ID).Error)
		assert.Equal(t, 0, reloaded.Quantity)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, service, cleanup := setupLendingTest(t)
		defer cleanup()

		_, err := service.ReturnLoan(1, entities.ReturnStatus("eaten"), "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, service, cleanup := setupLendingTest(t)
		defer cleanup()

		_, err := service.ReturnLoan(999, entities.ReturnStatusOK, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("second return is rejected and changes nothing", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		user := createMember(t, db, "Dan Reader")
		book := createBook(t, db, "Dune", 1, 30000)

		record, err := service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, 14))
		require.NoError(t, err)

		first, err := service.ReturnLoan(record.ID, entities.ReturnStatusOK, "")
		require.NoError(t, err)

		_, err = service.ReturnLoan(record.ID, entities.ReturnStatusLost, "changed my mind")
		assert.ErrorIs(t, err, ErrInvalidState)

		// The stored record keeps the first return's outcome.
		var reloaded entities.BorrowRecord
		require.NoError(t, db.First(&reloaded, record.ID).Error)
		assert.Equal(t, entities.ReturnStatusOK, reloaded.Status)
		require.NotNil(t, reloaded.ReturnDate)
		assert.WithinDuration(t, *first.ReturnDate, *reloaded.ReturnDate, time.Second)
		assert.Nil(t, reloaded.FineID)

		// Quantity was restored exactly once.
		var book2 entities.Book
		require.NoError(t, db.First(&book2, book.ID).Error)
		assert.Equal(t, 1, book2.Quantity)
	})
}

func TestService_PayFine(t *testing.T) {
	makeFine := func(t *testing.T, db *gorm.DB, service *Service) *entities.Fine {
		t.Helper()
		user := createMember(t, db, "Fiona Reader")
		book := createBook(t, db, "Dune", 1, 60000)

		record, err := service.CreateLoan(user.ID, book.ID, time.Now().AddDate(0, 0, 14))
		require.NoError(t, err)
		returned, err := service.ReturnLoan(record.ID, entities.ReturnStatusLost, "")
		require.NoError(t, err)
		require.NotNil(t, returned.FineID)

		var fine entities.Fine
		require.NoError(t, db.First(&fine, *returned.FineID).Error)
		return &fine
	}

	t.Run("records method, date and collector", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		fine := makeFine(t, db, service)
		collector := createMember(t, db, "Libby Staff")

		paid, err := service.PayFine(fine.ID, entities.PaymentMethodBankTransfer, collector.ID)
		require.NoError(t, err)
		assert.True(t, paid.Paid)
		assert.Equal(t, entities.PaymentMethodBankTransfer, paid.PaymentMethod)
		require.NotNil(t, paid.PaidDate)
		require.NotNil(t, paid.CollectedByID)
		assert.Equal(t, collector.ID, *paid.CollectedByID)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, service, cleanup := setupLendingTest(t)
		defer cleanup()

		_, err := service.PayFine(1, entities.PaymentMethod("barter"), 0)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown fine", func(t *testing.T) {
		_, service, cleanup := setupLendingTest(t)
		defer cleanup()

		_, err := service.PayFine(999, entities.PaymentMethodCash, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("paying twice is rejected and keeps the first payment", func(t *testing.T) {
		db, service, cleanup := setupLendingTest(t)
		defer cleanup()

		fine := makeFine(t, db, service)

		first, err := service.PayFine(fine.ID, entities.PaymentMethodCash, 0)
		require.NoError(t, err)

		_, err = service.PayFine(fine.ID, entities.PaymentMethodBankTransfer, 0)
		assert.ErrorIs(t, err, ErrInvalidState)

		var reloaded entities.Fine
		require.NoError(t, db.First(&reloaded, fine.ID).Error)
		assert.Equal(t, entities.PaymentMethodCash, reloaded.PaymentMethod)
		require.NotNil(t, reloaded.PaidDate)
		assert.WithinDuration(t, *first.PaidDate, *reloaded.PaidDate, time.Second)
	})
}
