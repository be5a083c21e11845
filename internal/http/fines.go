package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/fines"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/lending"
)

// FinesController exposes fine lookup and payment settlement.
type FinesController struct {
	lending *lending.Service
	fines   *fines.Repository
	users   *users.Repository
}

// NewFinesController creates a new fines controller.
func NewFinesController(lendingService *lending.Service, finesRepo *fines.Repository, usersRepo *users.Repository) *FinesController {
	return &FinesController{
		lending: lendingService,
		fines:   finesRepo,
		users:   usersRepo,
	}
}

// GetFine returns a single fine with borrower and collector attached.
// GET /api/fines/:id
func (fc *FinesController) GetFine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fine, err := fc.fines.GetFineByID(id)
	if err != nil {
		respondNotFound(c, "fine")
		return
	}

	c.JSON(http.StatusOK, fine)
}

// ListFines returns fines with pagination. Supports ?paid=true|false and
// ?search=<borrower name>.
// GET /api/fines
func (fc *FinesController) ListFines(c *gin.Context) {
	limit, offset := parsePagination(c)

	var paid *bool
	switch c.Query("paid") {
	case "true":
		v := true
		paid = &v
	case "false":
		v := false
		paid = &v
	}

	var userIDs []uint
	if search := c.Query("search"); search != "" {
		ids, err := fc.users.FindUserIDsByName(search)
		if err != nil {
			respondInternalError(c, err, "search borrowers")
			return
		}
		userIDs = ids
	}

	results, total, err := fc.fines.ListFines(paid, userIDs, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list fines")
		return
	}

	respondPaginated(c, results, total, limit, offset)
}

type payFineRequest struct {
	PaymentMethod entities.PaymentMethod `json:"payment_method" binding:"required"`
}

// PayFine settles an unpaid fine.
// POST /api/fines/:id/pay
func (fc *FinesController) PayFine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req payFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "payment_method is required")
		return
	}

	collectorID := GetUserID(c)
	fine, err := fc.lending.PayFine(id, req.PaymentMethod, collectorID)
	if err != nil {
		respondLendingError(c, err, "pay fine")
		return
	}

	c.JSON(http.StatusOK, fine)
}

// UnpaidTotal returns the sum of a user's unpaid fines.
// GET /api/users/:id/fines/unpaid-total
func (fc *FinesController) UnpaidTotal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	total, err := fc.fines.UnpaidTotalForUser(id)
	if err != nil {
		respondInternalError(c, err, "sum unpaid fines")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": id, "unpaid_total": total})
}
