package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/loans"
)

// StatsController exposes circulation statistics.
type StatsController struct {
	loans *loans.Repository
}

// NewStatsController creates a new stats controller.
func NewStatsController(loansRepo *loans.Repository) *StatsController {
	return &StatsController{loans: loansRepo}
}

// MonthlyActivity returns borrow and return counts per calendar month for
// the last n months (?months=, default 6, max 24), oldest first.
// GET /api/stats/monthly
func (sc *StatsController) MonthlyActivity(c *gin.Context) {
	months := 6
	if s := c.Query("months"); s != "" {
		if m, err := strconv.Atoi(s); err == nil && m > 0 && m <= 24 {
			months = m
		}
	}

	stats, err := sc.loans.CountByMonth(time.Now(), months)
	if err != nil {
		respondInternalError(c, err, "monthly stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": stats})
}

// Totals returns overall circulation counters.
// GET /api/stats/totals
func (sc *StatsController) Totals(c *gin.Context) {
	total, err := sc.loans.CountRecords()
	if err != nil {
		respondInternalError(c, err, "count records")
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_loans": total})
}
