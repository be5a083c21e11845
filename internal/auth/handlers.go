package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/config"
)

// Controller handles authentication HTTP endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	auditService   *audit.Service
	rateLimiter    *RateLimiter
	config         config.Auth
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessionManager *SessionManager, auditService *audit.Service, cfg config.Auth) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		auditService:   auditService,
		rateLimiter:    NewRateLimiter(DefaultRateLimitConfig()),
		config:         cfg,
	}
}

// RegisterRoutes attaches the auth endpoints to the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
	router.GET("/api/auth/me", ac.CurrentUser)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates credentials and establishes a session.
// POST /api/auth/login
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ip := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(ip, req.Username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(ip, req.Username)
		if ac.auditService != nil {
			ac.auditService.LogAuth(0, "login", "Failed login for "+req.Username, err)
		}
		if errors.Is(err, ErrInvalidPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ac.rateLimiter.RecordSuccess(ip, req.Username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	if ac.auditService != nil {
		ac.auditService.LogAuth(user.ID, "login", "User logged in", nil)
	}

	resp := gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	}
	if token, exists := c.Get("csrf_token"); exists {
		resp["csrf_token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// Logout destroys the current session.
// POST /api/auth/logout
func (ac *Controller) Logout(c *gin.Context) {
	userID := ac.sessionManager.GetUserID(c.Request)

	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to destroy session"})
		return
	}

	if ac.auditService != nil && userID != 0 {
		ac.auditService.LogAuth(userID, "logout", "User logged out", nil)
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// CurrentUser returns the authenticated user, if any.
// GET /api/auth/me
func (ac *Controller) CurrentUser(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"full_name": user.FullName,
		"email":     user.Email,
		"role":      user.Role,
	})
}
