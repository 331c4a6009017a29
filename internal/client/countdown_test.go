package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mission-desk/internal/domain"
)

func TestTimeLeft(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 90*time.Minute, TimeLeft(now.Add(90*time.Minute), now))
	assert.Equal(t, time.Duration(0), TimeLeft(now.Add(-time.Hour), now))
}

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{49*time.Hour + 500*time.Millisecond, "49:00:00"},
		{-time.Minute, "00:00:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCountdown(tc.d), tc.d.String())
	}
}

func TestTaskCountdown(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(2 * time.Hour)

	got, ok := TaskCountdown(domain.PlanTask{Status: domain.TaskStatusTodo, DueAt: &due}, now)
	assert.True(t, ok)
	assert.Equal(t, "02:00:00", got)

	past := now.Add(-time.Hour)
	got, ok = TaskCountdown(domain.PlanTask{Status: domain.TaskStatusTodo, DueAt: &past}, now)
	assert.True(t, ok)
	assert.Equal(t, "00:00:00", got)

	_, ok = TaskCountdown(domain.PlanTask{Status: domain.TaskStatusDone, DueAt: &due}, now)
	assert.False(t, ok)

	_, ok = TaskCountdown(domain.PlanTask{Status: domain.TaskStatusTodo}, now)
	assert.False(t, ok)
}
