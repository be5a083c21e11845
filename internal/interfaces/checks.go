package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	auditrepo "github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/notify"
	"github.com/openshelf/openshelf/internal/tasks"
)

// AuditEventCleaner implementations
var _ tasks.AuditEventCleaner = (*auditrepo.Repository)(nil)

// Notifier implementations
var _ notify.Notifier = (*notify.LogNotifier)(nil)
