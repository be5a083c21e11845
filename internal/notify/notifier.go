// Package notify defines the boundary to whatever delivers overdue notices.
// The circulation core only produces notices; delivery (email, SMS, carrier
// pigeon) belongs to a collaborator behind the Notifier interface.
package notify

import (
	"context"
	"log"
	"time"
)

// OverdueNotice describes one overdue loan for delivery to the borrower.
type OverdueNotice struct {
	RecordID    uint
	UserID      uint
	Email       string
	FullName    string
	BookTitle   string
	DueDate     time.Time
	OverdueDays int
}

// Notifier delivers overdue notices.
type Notifier interface {
	NotifyOverdue(ctx context.Context, notice OverdueNotice) error
}

// LogNotifier writes notices to the process log. It is the default when no
// delivery backend is configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyOverdue logs the notice.
func (n *LogNotifier) NotifyOverdue(_ context.Context, notice OverdueNotice) error {
	log.Printf("[OVERDUE] record %d: %q held by %s (%s) is %d days past due (%s)",
		notice.RecordID, notice.BookTitle, notice.FullName, notice.Email,
		notice.OverdueDays, notice.DueDate.Format("2006-01-02"))
	return nil
}
