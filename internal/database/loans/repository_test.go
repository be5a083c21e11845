package loans

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

func setupLoansTest(t *testing.T) (*gorm.DB, *Repository, func()) {
	t.Helper()

	dbPath := "./test_loans_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, NewRepository(db.DB), cleanup
}

func seedLoan(t *testing.T, db *gorm.DB, repo *Repository, fullName string, dueDate time.Time) *entities.BorrowRecord {
	t.Helper()

	user := &entities.User{
		Username: strings.ToLower(strings.ReplaceAll(fullName, " ", "")) + dueDate.Format("0102150405"),
		FullName: fullName,
		Email:    strings.ToLower(strings.ReplaceAll(fullName, " ", ".")) + dueDate.Format("0102150405") + "@example.org",
	}
	require.NoError(t, db.Create(user).Error)

	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", Quantity: 1}
	require.NoError(t, db.Create(book).Error)

	record := &entities.BorrowRecord{
		UserID:  user.ID,
		BookID:  book.ID,
		DueDate: dueDate,
		Status:  entities.ReturnStatusOK,
	}
	require.NoError(t, repo.CreateRecord(record))
	return record
}

func TestRepository_CloseRecord(t *testing.T) {
	t.Run("closes an outstanding record once", func(t *testing.T) {
		db, repo, cleanup := setupLoansTest(t)
		defer cleanup()

		record := seedLoan(t, db, repo, "Alice Reader", time.Now().AddDate(0, 0, 14))
		returnDate := time.Now()

		applied, err := repo.CloseRecord(record.ID, returnDate, entities.ReturnStatusBreak, "water damage")
		require.NoError(t, err)
		assert.True(t, applied)

		reloaded, err := repo.GetRecord(record.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.ReturnDate)
		assert.Equal(t, entities.ReturnStatusBreak, reloaded.Status)
		assert.Equal(t, "water damage", reloaded.Note)
	})

	t.Run("second close is a no-op", func(t *testing.T) {
		db, repo, cleanup := setupLoansTest(t)
		defer cleanup()

		record := seedLoan(t, db, repo, "Bob Reader", time.Now().AddDate(0, 0, 14))

		applied, err := repo.CloseRecord(record.ID, time.Now(), entities.ReturnStatusOK, "")
		require.NoError(t, err)
		require.True(t, applied)

		applied, err = repo.CloseRecord(record.ID, time.Now(), entities.ReturnStatusLost, "late claim")
		require.NoError(t, err)
		assert.False(t, applied)

		reloaded, err := repo.GetRecord(record.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.ReturnStatusOK, reloaded.Status)
		assert.Empty(t, reloaded.Note)
	})

	t.Run("missing record reports not applied", func(t *testing.T) {
		_, repo, cleanup := setupLoansTest(t)
		defer cleanup()

		applied, err := repo.CloseRecord(999, time.Now(), entities.ReturnStatusOK, "")
		require.NoError(t, err)
		assert.False(t, applied)
	})
}

func TestRepository_ListRecords(t *testing.T) {
	db, repo, cleanup := setupLoansTest(t)
	defer cleanup()

	open := seedLoan(t, db, repo, "Alice Reader", time.Now().AddDate(0, 0, 14))
	closed := seedLoan(t, db, repo, "Bob Reader", time.Now().AddDate(0, 0, 14))
	applied, err := repo.CloseRecord(closed.ID, time.Now(), entities.ReturnStatusOK, "")
	require.NoError(t, err)
	require.True(t, applied)

	t.Run("all records", func(t *testing.T) {
		records, total, err := repo.ListRecords(FilterAll, nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, records, 2)
		// Borrower and book come preloaded for the listing.
		assert.NotEmpty(t, records[0].User.FullName)
		assert.NotEmpty(t, records[0].Book.Title)
	})

	t.Run("outstanding only", func(t *testing.T) {
		records, total, err := repo.ListRecords(FilterNotReturned, nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, records, 1)
		assert.Equal(t, open.ID, records[0].ID)
	})

	t.Run("restricted to given borrowers", func(t *testing.T) {
		records, total, err := repo.ListRecords(FilterAll, []uint{closed.UserID}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, records, 1)
		assert.Equal(t, closed.ID, records[0].ID)
	})

	t.Run("empty borrower set matches nothing", func(t *testing.T) {
		_, total, err := repo.ListRecords(FilterAll, []uint{}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestRepository_ListOverdueOutstanding(t *testing.T) {
	db, repo, cleanup := setupLoansTest(t)
	defer cleanup()

	now := time.Now()

	overdue := seedLoan(t, db, repo, "Alice Reader", now.AddDate(0, 0, -3))
	seedLoan(t, db, repo, "Bob Reader", now.AddDate(0, 0, 3))
	returnedLate := seedLoan(t, db, repo, "Cara Reader", now.AddDate(0, 0, -5))
	applied, err := repo.CloseRecord(returnedLate.ID, now, entities.ReturnStatusOK, "")
	require.NoError(t, err)
	require.True(t, applied)

	records, err := repo.ListOverdueOutstanding(now)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, overdue.ID, records[0].ID)
	assert.NotEmpty(t, records[0].User.Email)
}

func TestRepository_CountByMonth(t *testing.T) {
	db, repo, cleanup := setupLoansTest(t)
	defer cleanup()

	now := time.Now()
	record := seedLoan(t, db, repo, "Alice Reader", now.AddDate(0, 0, 14))
	applied, err := repo.CloseRecord(record.ID, now, entities.ReturnStatusOK, "")
	require.NoError(t, err)
	require.True(t, applied)

	stats, err := repo.CountByMonth(now, 3)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Oldest first; the current month carries this month's activity.
	current := stats[2]
	assert.Equal(t, now.Format("2006-01"), current.Month)
	assert.Equal(t, int64(1), current.Borrowed)
	assert.Equal(t, int64(1), current.Returned)
	assert.Equal(t, int64(0), stats[0].Borrowed)
}
