// Command generate_demo creates a demo database with a small library:
// a catalog of public domain books, a few members, outstanding and
// returned loans, and the fines those returns produced.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/fines"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/lending"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	booksRepo := books.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB)
	finesRepo := fines.NewRepository(db.DB)

	catalog := demoCatalog()
	for i := range catalog {
		if err := booksRepo.CreateBook(&catalog[i]); err != nil {
			log.Fatalf("Failed to save book %s: %v", catalog[i].Title, err)
		}
		log.Printf("Saved: %s by %s (%d copies)", catalog[i].Title, catalog[i].Author, catalog[i].Quantity)
	}

	members := demoMembers()
	for i := range members {
		if err := usersRepo.CreateUser(&members[i]); err != nil {
			log.Fatalf("Failed to save member %s: %v", members[i].FullName, err)
		}
	}
	log.Printf("Saved %d members", len(members))

	lendingService := lending.NewService(db.DB, nil, 0)
	now := time.Now()

	// An outstanding loan due in two weeks.
	if _, err := lendingService.CreateLoan(members[0].ID, catalog[0].ID, now.AddDate(0, 0, 14)); err != nil {
		log.Fatalf("Failed to create loan: %v", err)
	}

	// A loan already past due, to feed the overdue scan.
	overdue, err := lendingService.CreateLoan(members[1].ID, catalog[1].ID, now.AddDate(0, 0, 7))
	if err != nil {
		log.Fatalf("Failed to create loan: %v", err)
	}
	backdate(db, overdue.ID, now.AddDate(0, 0, -10))

	// A returned loan that came back late and produced an unpaid fine.
	late, err := lendingService.CreateLoan(members[2].ID, catalog[2].ID, now.AddDate(0, 0, 7))
	if err != nil {
		log.Fatalf("Failed to create loan: %v", err)
	}
	backdate(db, late.ID, now.AddDate(0, 0, -3))
	if _, err := lendingService.ReturnLoan(late.ID, entities.ReturnStatusOK, ""); err != nil {
		log.Fatalf("Failed to return loan: %v", err)
	}

	// A lost copy whose replacement fine is already settled.
	lost, err := lendingService.CreateLoan(members[0].ID, catalog[3].ID, now.AddDate(0, 0, 21))
	if err != nil {
		log.Fatalf("Failed to create loan: %v", err)
	}
	returned, err := lendingService.ReturnLoan(lost.ID, entities.ReturnStatusLost, "reported lost by borrower")
	if err != nil {
		log.Fatalf("Failed to return loan: %v", err)
	}
	if returned.FineID != nil {
		if _, err := finesRepo.MarkPaid(*returned.FineID, entities.PaymentMethodCash, 0, now); err != nil {
			log.Fatalf("Failed to settle fine: %v", err)
		}
	}

	total, err := loansRepo.CountRecords()
	if err != nil {
		log.Fatalf("Failed to count records: %v", err)
	}
	log.Printf("Demo database ready: %d books, %d members, %d loans", len(catalog), len(members), total)
}

// backdate rewrites a record's due date so demo loans can be overdue or
// late without waiting for real time to pass.
func backdate(db *database.Database, recordID uint, dueDate time.Time) {
	err := db.DB.Model(&entities.BorrowRecord{}).
		Where("id = ?", recordID).
		Update("due_date", dueDate).Error
	if err != nil {
		log.Fatalf("Failed to backdate record %d: %v", recordID, err)
	}
}

func demoCatalog() []entities.Book {
	return []entities.Book{
		{
			Title:     "Pride and Prejudice",
			Author:    "Jane Austen",
			ISBN:      "9780141439518",
			Publisher: "T. Egerton",
			Language:  "English",
			PageCount: 432,
			Quantity:  3,
			Price:     24000,
		},
		{
			Title:     "Moby-Dick",
			Author:    "Herman Melville",
			ISBN:      "9780142437247",
			Publisher: "Harper & Brothers",
			Language:  "English",
			PageCount: 720,
			Quantity:  2,
			Price:     32000,
		},
		{
			Title:     "Crime and Punishment",
			Author:    "Fyodor Dostoevsky",
			ISBN:      "9780143058144",
			Publisher: "The Russian Messenger",
			Language:  "English",
			PageCount: 671,
			Quantity:  2,
			Price:     28000,
		},
		{
			Title:     "The Picture of Dorian Gray",
			Author:    "Oscar Wilde",
			ISBN:      "9780141439570",
			Publisher: "Ward, Lock and Company",
			Language:  "English",
			PageCount: 254,
			Quantity:  1,
			Price:     18000,
		},
		{
			Title:     "Frankenstein",
			Author:    "Mary Shelley",
			ISBN:      "9780141439471",
			Publisher: "Lackington, Hughes",
			Language:  "English",
			PageCount: 280,
			Quantity:  4,
			Price:     20000,
		},
	}
}

func demoMembers() []entities.User {
	return []entities.User{
		{Username: "ebennet", FullName: "Elizabeth Bennet", Email: "ebennet@example.org", Role: entities.UserRoleMember},
		{Username: "ishmael", FullName: "Ishmael Sailor", Email: "ishmael@example.org", Role: entities.UserRoleMember},
		{Username: "rodion", FullName: "Rodion Raskolnikov", Email: "rodion@example.org", Role: entities.UserRoleMember},
	}
}
