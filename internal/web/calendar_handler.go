package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/service"
)

// CalendarHandler renders a month of tasks as a 35-cell grid starting on
// Monday, the same shape the UI draws.
type CalendarHandler struct {
	tasks TaskService
	clock service.Clock
}

func NewCalendarHandler(tasks TaskService, clock service.Clock) *CalendarHandler {
	return &CalendarHandler{tasks: tasks, clock: clock}
}

type calendarResponse struct {
	Year  int                       `json:"year"`
	Month int                       `json:"month"`
	Days  []string                  `json:"days"`
	Tasks map[string][]taskResponse `json:"tasks"`
}

func (h *CalendarHandler) Month(c *gin.Context) {
	user := currentUser(c)

	today := h.clock.Now()
	year := queryInt(c, "year", today.Year())
	month := queryInt(c, "month", int(today.Month()))
	if month < 1 {
		month = 12
		year--
	}
	if month > 12 {
		month = 1
		year++
	}

	firstOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	// Shift back so the grid starts on Monday.
	weekday := int(firstOfMonth.Weekday())
	daysBack := weekday - 1
	if weekday == 0 {
		daysBack = 6
	}
	gridStart := firstOfMonth.AddDate(0, 0, -daysBack)
	gridEnd := gridStart.AddDate(0, 0, 34)

	tasks, err := h.tasks.ListTasksBetween(c.Request.Context(), user, gridStart, gridEnd.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load calendar"})
		return
	}

	days := make([]string, 0, 35)
	for i := 0; i < 35; i++ {
		days = append(days, gridStart.AddDate(0, 0, i).Format("2006-01-02"))
	}

	byDay := make(map[string][]taskResponse)
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		key := task.DueDate.Format("2006-01-02")
		byDay[key] = append(byDay[key], toTaskResponse(task))
	}

	c.JSON(http.StatusOK, calendarResponse{Year: year, Month: month, Days: days, Tasks: byDay})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
