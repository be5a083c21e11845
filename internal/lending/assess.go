package lending

import (
	"fmt"
	"time"

	"github.com/openshelf/openshelf/internal/entities"
)

// DefaultOverduePenaltyPerDay is the per-day lateness charge in whole
// currency units.
const DefaultOverduePenaltyPerDay int64 = 1000

// FineSpec describes a fine to be created for a return event.
type FineSpec struct {
	Amount int64
	Reason string
}

// Assess decides whether a return event incurs a fine. It is a pure
// function of the return context: a damaged or lost copy is charged the
// book's replacement price regardless of timeliness, a late undamaged
// return is charged per started day of lateness, and an on-time undamaged
// return incurs nothing. The two charged cases are mutually exclusive, so
// at most one fine results from any return.
func Assess(status entities.ReturnStatus, returnDate, dueDate time.Time, bookPrice, penaltyPerDay int64) *FineSpec {
	if status != entities.ReturnStatusOK {
		return &FineSpec{
			Amount: bookPrice,
			Reason: "book lost or damaged",
		}
	}

	days := lateDays(returnDate, dueDate)
	if days > 0 {
		return &FineSpec{
			Amount: int64(days) * penaltyPerDay,
			Reason: fmt.Sprintf("returned %d days late", days),
		}
	}

	return nil
}

// lateDays counts started days of lateness, i.e. the ceiling of the
// overshoot in days. Zero for on-time or early returns.
func lateDays(returnDate, dueDate time.Time) int {
	diff := returnDate.Sub(dueDate)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
