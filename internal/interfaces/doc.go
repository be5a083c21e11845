// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Background Work Interfaces
//
//   - AuditEventCleaner: retention cleanup of audit events (internal/tasks/cleanup_audit.go)
//   - Notifier: delivery of overdue notices (internal/notify/notifier.go)
//
// # Adding a New Notification Channel
//
// To deliver overdue notices somewhere other than the log:
//
//  1. Implement Notifier in internal/notify/
//
//     type EmailNotifier struct {
//         client *smtp.Client
//     }
//
//     func (n *EmailNotifier) NotifyOverdue(ctx context.Context, notice notify.OverdueNotice) error
//
//     var _ notify.Notifier = (*EmailNotifier)(nil)
//
//  2. Pass it to tasks.NewOverdueNoticeQueue in entrypoint.go
//
// # Adding a New Database Domain
//
// To add a new data domain:
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement query methods, with a WithTx method when the lending
//     service needs to call them inside a transaction
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
