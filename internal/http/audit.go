package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditrepo "github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/entities"
)

// AuditController exposes the operational audit trail.
type AuditController struct {
	audit *auditrepo.Repository
}

// NewAuditController creates a new audit controller.
func NewAuditController(auditRepo *auditrepo.Repository) *AuditController {
	return &AuditController{audit: auditRepo}
}

// ListEvents returns audit events, newest first. Supports ?type=<event
// type>, ?user_id=<id> and pagination.
// GET /api/audit
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, offset := parsePagination(c)

	var userID uint
	if s := c.Query("user_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		userID = uint(id)
	}

	eventType := entities.AuditEventType(c.Query("type"))

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType != "" {
		events, total, err = ac.audit.GetEventsByType(eventType, userID, limit, offset)
	} else {
		events, total, err = ac.audit.GetEvents(userID, limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	})
}
