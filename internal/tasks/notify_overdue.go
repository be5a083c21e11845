package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/openshelf/openshelf/internal/notify"
)

// OverdueNoticeTask carries one overdue loan through the queue. The overdue
// scan enqueues one task per record so a single failing delivery retries
// alone.
type OverdueNoticeTask struct {
	RecordID    uint      `json:"record_id"`
	UserID      uint      `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	BookTitle   string    `json:"book_title"`
	DueDate     time.Time `json:"due_date"`
	OverdueDays int       `json:"overdue_days"`
}

// Config returns the queue configuration for overdue notice tasks.
func (t OverdueNoticeTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "notify_overdue_loan",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueNoticeProcessor creates a processor that hands the notice to the
// configured delivery backend.
func OverdueNoticeProcessor(notifier notify.Notifier) backlite.QueueProcessor[OverdueNoticeTask] {
	return func(ctx context.Context, task OverdueNoticeTask) error {
		if notifier == nil {
			return fmt.Errorf("overdue notifier not configured")
		}

		notice := notify.OverdueNotice{
			RecordID:    task.RecordID,
			UserID:      task.UserID,
			Email:       task.Email,
			FullName:    task.FullName,
			BookTitle:   task.BookTitle,
			DueDate:     task.DueDate,
			OverdueDays: task.OverdueDays,
		}
		if err := notifier.NotifyOverdue(ctx, notice); err != nil {
			return fmt.Errorf("deliver overdue notice for record %d: %w", task.RecordID, err)
		}

		log.Printf("[TASK] Delivered overdue notice for record %d", task.RecordID)
		return nil
	}
}

// NewOverdueNoticeQueue creates a backlite queue for overdue notices.
func NewOverdueNoticeQueue(notifier notify.Notifier) backlite.Queue {
	return backlite.NewQueue(OverdueNoticeProcessor(notifier))
}
