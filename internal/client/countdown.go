package client

import (
	"fmt"
	"time"

	"mission-desk/internal/domain"
)

// TimeLeft is due minus now, never negative.
func TimeLeft(due, now time.Time) time.Duration {
	d := due.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// FormatCountdown renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// TaskCountdown returns the countdown shown next to a plan task. Done tasks and tasks without a
// due date have none.
func TaskCountdown(task domain.PlanTask, now time.Time) (string, bool) {
	if task.Status == domain.TaskStatusDone || task.DueAt == nil {
		return "", false
	}
	return FormatCountdown(TimeLeft(*task.DueAt, now)), true
}
