package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/entities"
)

// Service provides high-level audit logging for circulation events.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogLoanCreated records a checkout.
func (s *Service) LogLoanCreated(userID, recordID, bookID uint, dueDate time.Time) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventLoan,
		Action:      "loan_created",
		Description: fmt.Sprintf("Book %d checked out, due %s", bookID, dueDate.Format("2006-01-02")),
		EntityType:  "borrow_record",
		EntityID:    &recordID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"book_id":  bookID,
		"due_date": dueDate.Format(time.RFC3339),
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogLoanReturned records a return, whatever the copy's condition.
func (s *Service) LogLoanReturned(userID, recordID uint, status entities.ReturnStatus) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReturn,
		Action:      "loan_returned",
		Description: fmt.Sprintf("Borrow record %d returned with condition %q", recordID, status),
		EntityType:  "borrow_record",
		EntityID:    &recordID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogFineAssessed records a fine produced by a return event.
func (s *Service) LogFineAssessed(userID, fineID uint, amount int64, reason string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventFine,
		Action:      "fine_assessed",
		Description: truncate("Fine assessed: "+reason, 500),
		EntityType:  "fine",
		EntityID:    &fineID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{"amount": amount}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogFinePaid records a fine payment.
func (s *Service) LogFinePaid(userID, fineID uint, amount int64, collectorID uint) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventPayment,
		Action:      "fine_paid",
		Description: fmt.Sprintf("Fine %d paid, collected by user %d", fineID, collectorID),
		EntityType:  "fine",
		EntityID:    &fineID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"amount":       amount,
		"collected_by": collectorID,
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogAuth records a login or logout event.
func (s *Service) LogAuth(userID uint, action, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
