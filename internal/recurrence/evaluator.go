// Package recurrence decides whether a template cart (Scheduled or
// Recurring) is due to spawn a new draft cart on a given day, and builds
// the spawned cart when it is. Evaluation is pure; all persistence is the
// caller's responsibility.
package recurrence

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// Decision is the outcome of evaluating one template cart for one day
type Decision struct {
	ShouldRun bool
	Spawn     *models.Cart
}

// Evaluate decides whether the template is due to fire today. Comparisons
// use local calendar days: time-of-day is stripped before any check. A
// template whose LastRunAt equals today never fires again that day.
func Evaluate(template *models.Cart, today time.Time) Decision {
	if template == nil || template.Type == models.CartTypeStandard {
		return Decision{}
	}

	day := Midnight(today)

	if template.LastRunAt != nil && Midnight(*template.LastRunAt).Equal(day) {
		return Decision{}
	}

	if !isDue(template, day) {
		return Decision{}
	}

	return Decision{
		ShouldRun: true,
		Spawn:     buildSpawn(template, day),
	}
}

func isDue(template *models.Cart, day time.Time) bool {
	switch template.Type {
	case models.CartTypeScheduled:
		// Fires once: after firing LastRunAt is set, which permanently
		// consumes the template.
		if template.ScheduledDate == nil || template.LastRunAt != nil {
			return false
		}
		return !day.Before(Midnight(*template.ScheduledDate))

	case models.CartTypeRecurring:
		if template.Frequency == nil {
			return false
		}
		switch *template.Frequency {
		case models.FrequencyWeekly:
			return matchesWeekday(template, day)
		case models.FrequencyBiWeekly:
			return matchesWeekday(template, day) && onEvenWeek(template, day)
		case models.FrequencyMonthly:
			return matchesMonthDay(template, day)
		case models.FrequencyQuarterly:
			return matchesMonthDay(template, day) && onQuarterMonth(template, day)
		}
	}

	return false
}

func matchesWeekday(template *models.Cart, day time.Time) bool {
	return template.DayOfWeek != nil && int(day.Weekday()) == *template.DayOfWeek
}

func matchesMonthDay(template *models.Cart, day time.Time) bool {
	return template.DayOfMonth != nil && day.Day() == *template.DayOfMonth
}

// onEvenWeek reports whether today falls on an even whole-week distance
// from the template's start date. The day difference is rounded up before
// the division, matching the observed behavior of the legacy scheduler
// even though ceiling vs floor can flip the result right at a week
// boundary.
func onEvenWeek(template *models.Cart, day time.Time) bool {
	if template.StartDate == nil {
		return false
	}
	start := Midnight(*template.StartDate)
	days := int(math.Ceil(math.Abs(day.Sub(start).Hours() / 24)))
	return (days/7)%2 == 0
}

// onQuarterMonth reports whether today's month is a non-negative multiple
// of three months after the template's start month
func onQuarterMonth(template *models.Cart, day time.Time) bool {
	if template.StartDate == nil {
		return false
	}
	start := Midnight(*template.StartDate)
	months := (day.Year()-start.Year())*12 + int(day.Month()) - int(start.Month())
	return months >= 0 && months%3 == 0
}

// buildSpawn synthesizes the Standard draft cart a firing template
// produces. Items are deep copies; the new cart never aliases the
// template's rows. The work order ID is assigned by the caller at
// creation time.
func buildSpawn(template *models.Cart, day time.Time) *models.Cart {
	spawnID := uuid.New()

	items := make([]models.CartItem, 0, len(template.Items))
	for _, item := range template.Items {
		copied := item
		copied.ID = uuid.New()
		copied.CartID = spawnID
		copied.ApprovalStatus = models.ApprovalPending
		copied.RejectionReason = ""
		items = append(items, copied)
	}

	return &models.Cart{
		ID:         spawnID,
		CompanyID:  template.CompanyID,
		Name:       fmt.Sprintf("%s - %s", template.Name, day.Format("1/2/2006")),
		Type:       models.CartTypeStandard,
		Status:     models.CartStatusDraft,
		PropertyID: template.PropertyID,
		ItemCount:  template.ItemCount,
		TotalCost:  template.TotalCost,
		Items:      items,
	}
}

// Midnight strips the time-of-day component in the value's location
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
