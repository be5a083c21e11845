package http

import (
	auditsvc "github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	auditrepo "github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/fines"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/lending"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database       *database.Database
	LendingService *lending.Service
	AuditService   *auditsvc.Service

	// Repositories
	BooksRepo *books.Repository
	UsersRepo *users.Repository
	LoansRepo *loans.Repository
	FinesRepo *fines.Repository
	AuditRepo *auditrepo.Repository

	// Authentication (all nil/empty when auth is disabled)
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}
