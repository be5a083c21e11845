package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so the session context set by the
	// session middleware is not overwritten by CSRF's request replacement.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth, inject the default operator identity.
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyRole, entities.UserRoleAdmin)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuditService, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.BooksRepo)
	usersController := NewUsersController(cfg.UsersRepo, cfg.AuthService)
	loansController := NewLoansController(cfg.LendingService, cfg.LoansRepo, cfg.UsersRepo)
	finesController := NewFinesController(cfg.LendingService, cfg.FinesRepo, cfg.UsersRepo)
	statsController := NewStatsController(cfg.LoansRepo)
	auditController := NewAuditController(cfg.AuditRepo)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	staff := auth.RequireRole(entities.UserRoleLibrarian)

	// Catalog endpoints. Reads are open to any authenticated user, writes
	// are staff only.
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.POST("/api/books", staff, booksController.CreateBook)
	router.PATCH("/api/books/:id", staff, booksController.UpdateBook)
	router.DELETE("/api/books/:id", staff, booksController.DeleteBook)

	// Member endpoints
	router.GET("/api/users", staff, usersController.ListUsers)
	router.GET("/api/users/:id", staff, usersController.GetUser)
	router.POST("/api/users", staff, usersController.CreateUser)
	router.DELETE("/api/users/:id", staff, usersController.DeleteUser)
	router.GET("/api/users/:id/fines/unpaid-total", staff, finesController.UnpaidTotal)

	// Circulation endpoints
	router.GET("/api/loans", staff, loansController.ListLoans)
	router.GET("/api/loans/overdue", staff, loansController.ListOverdueLoans)
	router.GET("/api/loans/:id", staff, loansController.GetLoan)
	router.POST("/api/loans", staff, loansController.CreateLoan)
	router.POST("/api/loans/:id/return", staff, loansController.ReturnLoan)

	// Fine endpoints
	router.GET("/api/fines", staff, finesController.ListFines)
	router.GET("/api/fines/:id", staff, finesController.GetFine)
	router.POST("/api/fines/:id/pay", staff, finesController.PayFine)

	// Statistics endpoints
	router.GET("/api/stats/monthly", staff, statsController.MonthlyActivity)
	router.GET("/api/stats/totals", staff, statsController.Totals)

	// Audit trail, admin only
	router.GET("/api/audit", auth.RequireRole(), auditController.ListEvents)

	return router
}
