package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/lending"
)

// LoansController exposes the borrow/return lifecycle.
type LoansController struct {
	lending *lending.Service
	loans   *loans.Repository
	users   *users.Repository
}

// NewLoansController creates a new loans controller.
func NewLoansController(lendingService *lending.Service, loansRepo *loans.Repository, usersRepo *users.Repository) *LoansController {
	return &LoansController{
		lending: lendingService,
		loans:   loansRepo,
		users:   usersRepo,
	}
}

type createLoanRequest struct {
	UserID  uint      `json:"user_id" binding:"required"`
	BookID  uint      `json:"book_id" binding:"required"`
	DueDate time.Time `json:"due_date" binding:"required"`
}

// CreateLoan checks a copy out to a user.
// POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "user_id, book_id and due_date are required")
		return
	}

	record, err := lc.lending.CreateLoan(req.UserID, req.BookID, req.DueDate)
	if err != nil {
		respondLendingError(c, err, "create loan")
		return
	}

	respondCreated(c, record)
}

type returnLoanRequest struct {
	Status entities.ReturnStatus `json:"status" binding:"required"`
	Note   string                `json:"note"`
}

// ReturnLoan closes an outstanding loan.
// POST /api/loans/:id/return
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req returnLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	record, err := lc.lending.ReturnLoan(id, req.Status, req.Note)
	if err != nil {
		respondLendingError(c, err, "return loan")
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetLoan returns one borrow record with borrower and book attached.
// GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := lc.loans.GetRecordByID(id)
	if err != nil {
		respondNotFound(c, "borrow record")
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListLoans returns borrow records with pagination. Supports
// ?filter=not-returned and ?search=<borrower name>.
// GET /api/loans
func (lc *LoansController) ListLoans(c *gin.Context) {
	limit, offset := parsePagination(c)

	filter := loans.FilterAll
	if c.Query("filter") == string(loans.FilterNotReturned) {
		filter = loans.FilterNotReturned
	}

	var userIDs []uint
	if search := c.Query("search"); search != "" {
		ids, err := lc.users.FindUserIDsByName(search)
		if err != nil {
			respondInternalError(c, err, "search borrowers")
			return
		}
		userIDs = ids
	}

	records, total, err := lc.loans.ListRecords(filter, userIDs, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	respondPaginated(c, records, total, limit, offset)
}

// ListOverdueLoans returns outstanding records past their due date.
// GET /api/loans/overdue
func (lc *LoansController) ListOverdueLoans(c *gin.Context) {
	records, err := lc.loans.ListOverdueOutstanding(time.Now())
	if err != nil {
		respondInternalError(c, err, "list overdue loans")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records, "total": len(records)})
}
