// Package scheduler runs the periodic overdue scan. The scan itself only
// reads: it walks outstanding records past their due date and enqueues one
// notice task per record, leaving delivery to the task queue.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/tasks"
)

// OverdueScanner manages the periodic scan for overdue loans.
type OverdueScanner struct {
	loans      *loans.Repository
	taskClient *tasks.Client
	schedule   string

	// auditRetentionDays > 0 makes each scheduled scan also enqueue an
	// audit cleanup task, piggybacking housekeeping on the daily cron.
	auditRetentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.Mutex
	isRunning  bool
	isScanning bool
}

// NewOverdueScanner creates a new scanner instance.
func NewOverdueScanner(loansRepo *loans.Repository, taskClient *tasks.Client, schedule string) *OverdueScanner {
	return &OverdueScanner{
		loans:      loansRepo,
		taskClient: taskClient,
		schedule:   schedule,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// WithAuditCleanup makes each scheduled run enqueue an audit retention
// cleanup in addition to the overdue notices.
func (s *OverdueScanner) WithAuditCleanup(retentionDays int) *OverdueScanner {
	s.auditRetentionDays = retentionDays
	return s
}

// Start begins the scheduled scan.
func (s *OverdueScanner) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunScan(); err != nil {
			log.Printf("Overdue scan failed: %v", err)
		}
		if s.auditRetentionDays > 0 {
			task := tasks.CleanupAuditEventsTask{RetentionDays: s.auditRetentionDays}
			if _, err := s.taskClient.Add(task).Save(); err != nil {
				log.Printf("Failed to enqueue audit cleanup: %v", err)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue scan %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Overdue scan scheduled: %s", s.schedule)
	return nil
}

// Stop halts the scheduler. A scan already in flight finishes on its own.
func (s *OverdueScanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	s.cron.Stop()
	s.isRunning = false
	log.Printf("Overdue scan scheduler stopped")
}

// RunScan performs one scan immediately, returning how many notices were
// enqueued. Concurrent invocations coalesce: a scan already in progress
// makes the second call a no-op.
func (s *OverdueScanner) RunScan() (int, error) {
	s.mu.Lock()
	if s.isScanning {
		s.mu.Unlock()
		return 0, nil
	}
	s.isScanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isScanning = false
		s.mu.Unlock()
	}()

	now := time.Now()
	records, err := s.loans.ListOverdueOutstanding(now)
	if err != nil {
		return 0, fmt.Errorf("list overdue loans: %w", err)
	}

	enqueued := 0
	for _, record := range records {
		task := tasks.OverdueNoticeTask{
			RecordID:    record.ID,
			UserID:      record.UserID,
			Email:       record.User.Email,
			FullName:    record.User.FullName,
			BookTitle:   record.Book.Title,
			DueDate:     record.DueDate,
			OverdueDays: record.OverdueDaysAt(now),
		}
		if _, err := s.taskClient.Add(task).Save(); err != nil {
			log.Printf("Failed to enqueue overdue notice for record %d: %v", record.ID, err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		log.Printf("Overdue scan enqueued %d notices", enqueued)
	}
	return enqueued, nil
}
