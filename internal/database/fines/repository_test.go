package fines

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

func setupFinesTest(t *testing.T) (*gorm.DB, *Repository, func()) {
	t.Helper()

	dbPath := "./test_fines_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, NewRepository(db.DB), cleanup
}

func seedFine(t *testing.T, db *gorm.DB, repo *Repository, username string, amount int64) *entities.Fine {
	t.Helper()

	user := &entities.User{
		Username: username,
		FullName: username + " borrower",
		Email:    username + "@example.org",
	}
	require.NoError(t, db.Create(user).Error)

	record := &entities.BorrowRecord{
		UserID:  user.ID,
		BookID:  1,
		DueDate: time.Now().AddDate(0, 0, -7),
	}
	require.NoError(t, db.Create(record).Error)

	fine := &entities.Fine{
		UserID:         user.ID,
		BorrowRecordID: record.ID,
		Amount:         amount,
		Reason:         "returned 7 days late",
	}
	require.NoError(t, repo.CreateFine(fine))
	return fine
}

func TestRepository_MarkPaid(t *testing.T) {
	t.Run("applies payment once", func(t *testing.T) {
		db, repo, cleanup := setupFinesTest(t)
		defer cleanup()

		fine := seedFine(t, db, repo, "alice", 7000)
		paidDate := time.Now()

		applied, err := repo.MarkPaid(fine.ID, entities.PaymentMethodCash, fine.UserID, paidDate)
		require.NoError(t, err)
		assert.True(t, applied)

		reloaded, err := repo.GetFineByID(fine.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.Paid)
		assert.Equal(t, entities.PaymentMethodCash, reloaded.PaymentMethod)
		require.NotNil(t, reloaded.PaidDate)
		assert.WithinDuration(t, paidDate, *reloaded.PaidDate, time.Second)
	})

	t.Run("second payment is a no-op", func(t *testing.T) {
		db, repo, cleanup := setupFinesTest(t)
		defer cleanup()

		fine := seedFine(t, db, repo, "bob", 7000)

		applied, err := repo.MarkPaid(fine.ID, entities.PaymentMethodCash, 0, time.Now())
		require.NoError(t, err)
		require.True(t, applied)

		applied, err = repo.MarkPaid(fine.ID, entities.PaymentMethodBankTransfer, 0, time.Now())
		require.NoError(t, err)
		assert.False(t, applied)

		reloaded, err := repo.GetFineByID(fine.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.PaymentMethodCash, reloaded.PaymentMethod)
	})

	t.Run("missing fine reports not applied", func(t *testing.T) {
		_, repo, cleanup := setupFinesTest(t)
		defer cleanup()

		applied, err := repo.MarkPaid(999, entities.PaymentMethodCash, 0, time.Now())
		require.NoError(t, err)
		assert.False(t, applied)
	})
}

func TestRepository_ListFines(t *testing.T) {
	db, repo, cleanup := setupFinesTest(t)
	defer cleanup()

	unpaid := seedFine(t, db, repo, "alice", 5000)
	paid := seedFine(t, db, repo, "bob", 12000)
	applied, err := repo.MarkPaid(paid.ID, entities.PaymentMethodCash, 0, time.Now())
	require.NoError(t, err)
	require.True(t, applied)

	t.Run("all fines", func(t *testing.T) {
		fines, total, err := repo.ListFines(nil, nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, fines, 2)
	})

	t.Run("unpaid only", func(t *testing.T) {
		f := false
		fines, total, err := repo.ListFines(&f, nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, fines, 1)
		assert.Equal(t, unpaid.ID, fines[0].ID)
	})

	t.Run("paid only", func(t *testing.T) {
		p := true
		fines, total, err := repo.ListFines(&p, nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, fines, 1)
		assert.Equal(t, paid.ID, fines[0].ID)
	})

	t.Run("restricted to given borrowers", func(t *testing.T) {
		fines, total, err := repo.ListFines(nil, []uint{unpaid.UserID}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, fines, 1)
		assert.Equal(t, unpaid.ID, fines[0].ID)
	})
}

func TestRepository_UnpaidTotalForUser(t *testing.T) {
	db, repo, cleanup := setupFinesTest(t)
	defer cleanup()

	fine := seedFine(t, db, repo, "alice", 5000)
	second := &entities.Fine{
		UserID:         fine.UserID,
		BorrowRecordID: fine.BorrowRecordID,
		Amount:         3000,
		Reason:         "book lost or damaged",
	}
	require.NoError(t, repo.CreateFine(second))

	settled := seedFine(t, db, repo, "bob", 12000)
	applied, err := repo.MarkPaid(settled.ID, entities.PaymentMethodCash, 0, time.Now())
	require.NoError(t, err)
	require.True(t, applied)

	total, err := repo.UnpaidTotalForUser(fine.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), total)

	total, err = repo.UnpaidTotalForUser(settled.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
