package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

// UsersController exposes member management.
type UsersController struct {
	users       *users.Repository
	authService *auth.Service
}

// NewUsersController creates a new users controller. authService may be nil
// when authentication is disabled; member creation then skips credential
// handling entirely.
func NewUsersController(usersRepo *users.Repository, authService *auth.Service) *UsersController {
	return &UsersController{users: usersRepo, authService: authService}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser registers a library member. With authentication enabled the
// request must carry a password; without it the account has no credentials.
// POST /api/users
func (uc *UsersController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, full_name and email are required")
		return
	}

	role := entities.UserRole(req.Role)
	if req.Role == "" {
		role = entities.UserRoleMember
	}
	switch role {
	case entities.UserRoleAdmin, entities.UserRoleLibrarian, entities.UserRoleMember:
	default:
		respondBadRequest(c, "role must be admin, librarian or member")
		return
	}

	if uc.authService != nil && uc.authService.IsAuthEnabled() {
		user, err := uc.authService.CreateUser(req.Username, req.FullName, req.Email, req.Password, role)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		respondCreated(c, user)
		return
	}

	user := &entities.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     role,
	}
	if err := uc.users.CreateUser(user); err != nil {
		respondInternalError(c, err, "create user")
		return
	}
	respondCreated(c, user)
}

// GetUser returns one member.
// GET /api/users/:id
func (uc *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := uc.users.GetUserByID(id)
	if err != nil {
		respondNotFound(c, "user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns members with pagination. Supports ?search=<name>.
// GET /api/users
func (uc *UsersController) ListUsers(c *gin.Context) {
	limit, offset := parsePagination(c)

	results, total, err := uc.users.ListUsers(c.Query("search"), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	respondPaginated(c, results, total, limit, offset)
}

// DeleteUser removes a member. A member still holding copies cannot be
// deleted.
// DELETE /api/users/:id
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	outstanding, err := uc.users.HasOutstandingLoans(id)
	if err != nil {
		respondInternalError(c, err, "check outstanding loans")
		return
	}
	if outstanding {
		respondConflict(c, "user has outstanding loans", "outstanding_loans")
		return
	}

	if err := uc.users.DeleteUser(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}

	respondSuccess(c, "user deleted")
}
