package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskmanager/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dueDates(t *testing.T, tasks []model.Task) []time.Time {
	t.Helper()
	dates := make([]time.Time, 0, len(tasks))
	for _, task := range tasks {
		require.NotNil(t, task.DueDate)
		dates = append(dates, *task.DueDate)
	}
	return dates
}

func TestExpand_NoRuleReturnsAnchorOnly(t *testing.T) {
	start := date(2024, time.March, 5)
	tasks, err := Expand(Template{Title: "water plants", StartDueDate: &start})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, start, *tasks[0].DueDate)
	require.Equal(t, model.StatusPending, tasks[0].Status)
	require.False(t, tasks[0].IsReminded)
}

func TestExpand_MissingDatesDegradeToSingleTask(t *testing.T) {
	start := date(2024, time.March, 5)
	end := date(2024, time.June, 5)

	// Rule set but no end date.
	tasks, err := Expand(Template{Title: "a", RecurrenceRule: model.RecurDaily, StartDueDate: &start})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// Rule and end date but no start date.
	tasks, err = Expand(Template{Title: "a", RecurrenceRule: model.RecurDaily, RecurrenceEndDate: &end})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Nil(t, tasks[0].DueDate)
}

func TestExpand_WeeklyIncludesEndDateOnExactHit(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 8)
	tasks, err := Expand(Template{Title: "review", RecurrenceRule: model.RecurWeekly, StartDueDate: &start, RecurrenceEndDate: &end})
	require.NoError(t, err)
	require.Equal(t, []time.Time{date(2024, time.January, 1), date(2024, time.January, 8)}, dueDates(t, tasks))
}

func TestExpand_WeeklyExcludesOvershoot(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 10)
	tasks, err := Expand(Template{Title: "review", RecurrenceRule: model.RecurWeekly, StartDueDate: &start, RecurrenceEndDate: &end})
	require.NoError(t, err)
	require.Equal(t, []time.Time{date(2024, time.January, 1), date(2024, time.January, 8)}, dueDates(t, tasks))
}

func TestExpand_UnknownRuleEmitsAnchorOnly(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.December, 31)
	tasks, err := Expand(Template{Title: "stretch", RecurrenceRule: "Hourly", StartDueDate: &start, RecurrenceEndDate: &end})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, start, *tasks[0].DueDate)
}

func TestExpand_DailySequence(t *testing.T) {
	start := date(2024, time.February, 27)
	end := date(2024, time.March, 1)
	tasks, err := Expand(Template{Title: "meds", RecurrenceRule: model.RecurDaily, StartDueDate: &start, RecurrenceEndDate: &end})
	require.NoError(t, err)
	require.Equal(t, []time.Time{
		date(2024, time.February, 27),
		date(2024, time.February, 28),
		date(2024, time.February, 29), // leap year
		date(2024, time.March, 1),
	}, dueDates(t, tasks))
}

func TestExpand_MonthlyClampsToShortMonths(t *testing.T) {
	// The anchor day springs back after a short month instead of drifting.
	start := date(2024, time.January, 31)
	end := date(2024, time.April, 30)
	tasks, err := Expand(Template{Title: "rent", RecurrenceRule: model.RecurMonthly, StartDueDate: &start, RecurrenceEndDate: &end})
	require.NoError(t, err)
	require.Equal(t, []time.Time{
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2024, time.March, 31),
		date(2024, time.April, 30),
	}, dueDates(t, tasks))
}

func TestExpand_YearlyClampsLeapDay(t *testing.T) {
	start := date(2024, time.February, 29)
	end := date(2026, time.March, 1)
	tasks, err := Expand(Template{Title: "anniversary", RecurrenceRule: model.RecurYearly, StartDueDate: &start, RecurrenceEndDate: &end})
	require.NoError(t, err)
	require.Equal(t, []time.Time{
		date(2024, time.February, 29),
		date(2025, time.February, 28),
		date(2026, time.February, 28),
	}, dueDates(t, tasks))
}

func TestExpand_EndBeforeStartFails(t *testing.T) {
	start := date(2024, time.June, 1)
	end := date(2024, time.May, 1)
	_, err := Expand(Template{Title: "x", RecurrenceRule: model.RecurDaily, StartDueDate: &start, RecurrenceEndDate: &end})
	require.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestExpand_OccurrenceCap(t *testing.T) {
	start := date(2024, time.January, 1)
	end := start.AddDate(3, 0, 0)
	_, err := Expand(Template{Title: "daily standup", RecurrenceRule: model.RecurDaily, StartDueDate: &start, RecurrenceEndDate: &end})
	require.ErrorIs(t, err, ErrTooManyOccurrences)
}

func TestExpand_SiblingsDoNotInheritParent(t *testing.T) {
	parentID := uint(42)
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 15)
	tasks, err := Expand(Template{
		Title:             "sub-step",
		ParentTaskID:      &parentID,
		RecurrenceRule:    model.RecurWeekly,
		StartDueDate:      &start,
		RecurrenceEndDate: &end,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	require.NotNil(t, tasks[0].ParentTaskID)
	require.Equal(t, parentID, *tasks[0].ParentTaskID)
	for _, sibling := range tasks[1:] {
		require.Nil(t, sibling.ParentTaskID)
	}
}

func TestExpand_TitleValidation(t *testing.T) {
	_, err := Expand(Template{Title: ""})
	require.ErrorIs(t, err, ErrTitleRequired)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	_, err = Expand(Template{Title: string(long)})
	require.ErrorIs(t, err, ErrTitleTooLong)
}

// The limit counts characters, not bytes. 200 three-byte runes must pass
// even though the string is 600 bytes long.
func TestExpand_TitleLimitCountsRunes(t *testing.T) {
	tasks, err := Expand(Template{Title: strings.Repeat("日", 200)})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = Expand(Template{Title: strings.Repeat("日", 201)})
	require.ErrorIs(t, err, ErrTitleTooLong)
}

func TestExpand_CopiesTemplateFieldsToEveryOccurrence(t *testing.T) {
	projectID := uint(7)
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 3)
	reminder := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	tasks, err := Expand(Template{
		Title:             "check backups",
		Description:       "all hosts",
		Priority:          model.PriorityHigh,
		ProjectID:         &projectID,
		RecurrenceRule:    model.RecurDaily,
		StartDueDate:      &start,
		RecurrenceEndDate: &end,
		ReminderTime:      &reminder,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		require.Equal(t, "check backups", task.Title)
		require.Equal(t, "all hosts", task.Description)
		require.Equal(t, model.PriorityHigh, task.Priority)
		require.Equal(t, projectID, *task.ProjectID)
		require.Equal(t, reminder, *task.ReminderTime)
		require.Equal(t, model.StatusPending, task.Status)
	}
}
