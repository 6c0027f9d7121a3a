package recurrence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func timePtr(t time.Time) *time.Time { return &t }
func strPtr(s string) *string        { return &s }
func intPtr(i int) *int              { return &i }

func TestStandardCartNeverFires(t *testing.T) {
	template := &models.Cart{
		Type: models.CartTypeStandard,
	}

	decision := Evaluate(template, date(2024, 3, 15))
	require.False(t, decision.ShouldRun)
	require.Nil(t, decision.Spawn)
}

func TestNilTemplateNeverFires(t *testing.T) {
	decision := Evaluate(nil, date(2024, 3, 15))
	require.False(t, decision.ShouldRun)
}

func TestScheduledCartFiresOnOrAfterDate(t *testing.T) {
	scheduled := date(2024, 3, 15)

	tests := []struct {
		name      string
		today     time.Time
		lastRunAt *time.Time
		want      bool
	}{
		{"day before", date(2024, 3, 14), nil, false},
		{"scheduled day", date(2024, 3, 15), nil, true},
		{"day after, never fired", date(2024, 3, 16), nil, true},
		{"already fired", date(2024, 3, 16), timePtr(date(2024, 3, 15)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template := &models.Cart{
				Type:          models.CartTypeScheduled,
				ScheduledDate: &scheduled,
				LastRunAt:     tt.lastRunAt,
			}

			decision := Evaluate(template, tt.today)
			require.Equal(t, tt.want, decision.ShouldRun)
		})
	}
}

func TestScheduledCartWithoutDateNeverFires(t *testing.T) {
	template := &models.Cart{Type: models.CartTypeScheduled}
	require.False(t, Evaluate(template, date(2024, 3, 15)).ShouldRun)
}

func TestSameDayIdempotence(t *testing.T) {
	// 2024-03-15 is a Friday
	template := &models.Cart{
		Type:      models.CartTypeRecurring,
		Frequency: strPtr(models.FrequencyWeekly),
		DayOfWeek: intPtr(5),
		LastRunAt: timePtr(time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)),
	}

	// Evaluating later the same day must not fire again, regardless of
	// the time-of-day stored in LastRunAt
	decision := Evaluate(template, time.Date(2024, 3, 15, 23, 0, 0, 0, time.Local))
	require.False(t, decision.ShouldRun)

	// The next matching weekday fires
	decision = Evaluate(template, date(2024, 3, 22))
	require.True(t, decision.ShouldRun)
}

func TestWeeklyFiresOnMatchingWeekday(t *testing.T) {
	template := &models.Cart{
		Type:      models.CartTypeRecurring,
		Frequency: strPtr(models.FrequencyWeekly),
		DayOfWeek: intPtr(1), // Monday
	}

	require.True(t, Evaluate(template, date(2024, 3, 18)).ShouldRun)  // Monday
	require.False(t, Evaluate(template, date(2024, 3, 19)).ShouldRun) // Tuesday
}

func TestWeeklyWithoutWeekdayNeverFires(t *testing.T) {
	template := &models.Cart{
		Type:      models.CartTypeRecurring,
		Frequency: strPtr(models.FrequencyWeekly),
	}
	require.False(t, Evaluate(template, date(2024, 3, 18)).ShouldRun)
}

func TestBiWeeklyAlternatesWeeks(t *testing.T) {
	// Start on Monday 2024-03-04
	template := &models.Cart{
		Type:      models.CartTypeRecurring,
		Frequency: strPtr(models.FrequencyBiWeekly),
		DayOfWeek: intPtr(1),
		StartDate: timePtr(date(2024, 3, 4)),
	}

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{"start day, week zero", date(2024, 3, 4), true},
		{"one week out", date(2024, 3, 11), false},
		{"two weeks out", date(2024, 3, 18), true},
		{"three weeks out", date(2024, 3, 25), false},
		{"four weeks out", date(2024, 4, 1), true},
		{"wrong weekday on an even week", date(2024, 3, 19), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Evaluate(template, tt.today).ShouldRun)
		})
	}
}

func TestBiWeeklyWithoutStartDateNeverFires(t *testing.T) {
	template := &models.Cart{
		Type:      models.CartTypeRecurring,
		Frequency: strPtr(models.FrequencyBiWeekly),
		DayOfWeek: intPtr(1),
	}
	require.False(t, Evaluate(template, date(2024, 3, 18)).ShouldRun)
}

func TestMonthlyFiresOnDayOfMonth(t *testing.T) {
	template := &models.Cart{
		Type:       models.CartTypeRecurring,
		Frequency:  strPtr(models.FrequencyMonthly),
		DayOfMonth: intPtr(15),
	}

	require.True(t, Evaluate(template, date(2024, 3, 15)).ShouldRun)
	require.False(t, Evaluate(template, date(2024, 3, 14)).ShouldRun)
	require.True(t, Evaluate(template, date(2024, 4, 15)).ShouldRun)
}

func TestQuarterlyFiresEveryThirdMonth(t *testing.T) {
	template := &models.Cart{
		Type:       models.CartTypeRecurring,
		Frequency:  strPtr(models.FrequencyQuarterly),
		DayOfMonth: intPtr(1),
		StartDate:  timePtr(date(2024, 1, 1)),
	}

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{"start month", date(2024, 1, 1), true},
		{"one month later", date(2024, 2, 1), false},
		{"three months later", date(2024, 4, 1), true},
		{"six months later", date(2024, 7, 1), true},
		{"across a year boundary", date(2025, 1, 1), true},
		{"right day, wrong month", date(2024, 5, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Evaluate(template, tt.today).ShouldRun)
		})
	}
}

func TestQuarterlyBeforeStartNeverFires(t *testing.T) {
	template := &models.Cart{
		Type:       models.CartTypeRecurring,
		Frequency:  strPtr(models.FrequencyQuarterly),
		DayOfMonth: intPtr(1),
		StartDate:  timePtr(date(2024, 7, 1)),
	}
	require.False(t, Evaluate(template, date(2024, 4, 1)).ShouldRun)
}

func TestSpawnIsDeepCopyOfTemplate(t *testing.T) {
	companyID := uuid.New()
	propertyID := uuid.New()
	vendorID := uuid.New()
	scheduled := date(2024, 3, 15)

	template := &models.Cart{
		ID:            uuid.New(),
		CompanyID:     companyID,
		Name:          "Monthly Supplies",
		Type:          models.CartTypeScheduled,
		ScheduledDate: &scheduled,
		PropertyID:    &propertyID,
		ItemCount:     2,
		TotalCost:     45.50,
		Items: []models.CartItem{
			{ID: uuid.New(), SKU: "SKU-1", Name: "Towels", Quantity: 2, UnitPrice: 10, TotalPrice: 20, VendorID: &vendorID, ApprovalStatus: models.ApprovalRejected, RejectionReason: "too many"},
			{ID: uuid.New(), SKU: "SKU-2", Name: "Soap", Quantity: 1, UnitPrice: 25.50, TotalPrice: 25.50, VendorID: &vendorID},
		},
	}

	decision := Evaluate(template, date(2024, 3, 15))
	require.True(t, decision.ShouldRun)

	spawn := decision.Spawn
	require.NotNil(t, spawn)
	require.Equal(t, "Monthly Supplies - 3/15/2024", spawn.Name)
	require.Equal(t, models.CartTypeStandard, spawn.Type)
	require.Equal(t, models.CartStatusDraft, spawn.Status)
	require.Equal(t, companyID, spawn.CompanyID)
	require.Equal(t, &propertyID, spawn.PropertyID)
	require.NotEqual(t, template.ID, spawn.ID)
	require.Len(t, spawn.Items, 2)

	for i, item := range spawn.Items {
		require.NotEqual(t, template.Items[i].ID, item.ID, "spawned item must not alias the template row")
		require.Equal(t, spawn.ID, item.CartID)
		require.Equal(t, models.ApprovalPending, item.ApprovalStatus)
		require.Empty(t, item.RejectionReason)
		require.Equal(t, template.Items[i].SKU, item.SKU)
		require.Equal(t, template.Items[i].TotalPrice, item.TotalPrice)
	}
}

func TestSpawnNameUsesNoZeroPadding(t *testing.T) {
	scheduled := date(2024, 11, 3)
	template := &models.Cart{
		Name:          "Linens",
		Type:          models.CartTypeScheduled,
		ScheduledDate: &scheduled,
	}

	decision := Evaluate(template, date(2024, 11, 3))
	require.True(t, decision.ShouldRun)
	require.Equal(t, "Linens - 11/3/2024", decision.Spawn.Name)
}

func TestMidnightStripsTimeOfDay(t *testing.T) {
	in := time.Date(2024, 3, 15, 17, 45, 12, 999, time.Local)
	out := Midnight(in)
	require.Equal(t, date(2024, 3, 15), out)
}
