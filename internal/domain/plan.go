package domain

import (
	"context"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a plan task.
type TaskStatus string

const (
	TaskStatusTodo TaskStatus = "todo"
	TaskStatusDone TaskStatus = "done"
)

// PlanTask is one participant-declared task of an action plan.
type PlanTask struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	DueAt           *time.Time  `json:"dueAt"`
	Status          TaskStatus  `json:"status"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty"`
	Feedback        *AiAnalysis `json:"aiFeedback,omitempty"`
	ReportText      string      `json:"reportText,omitempty"`
	ReportObjectKey string      `json:"reportObjectKey,omitempty"`
}

// ActionPlan is a participant's self-declared plan for an exam. One per (account, exam).
type ActionPlan struct {
	ID        string
	ExamID    string
	AccountID string
	Tasks     []PlanTask
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskByID returns the index of the task with the given ID, or -1.
func (p *ActionPlan) TaskByID(taskID string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// TaskFeedbackPatch is what an analysis writes onto a plan task. Title and due date belong to plan
// saves and are never part of it.
type TaskFeedbackPatch struct {
	TaskID          string
	Feedback        *AiAnalysis
	ReportText      string
	ReportObjectKey string
	Status          TaskStatus
	CompletedAt     *time.Time
}

// Apply writes the patch onto t. A task that is already done stays done with its completion time.
func (p TaskFeedbackPatch) Apply(t PlanTask) PlanTask {
	t.Feedback = p.Feedback
	t.ReportText = p.ReportText
	t.ReportObjectKey = p.ReportObjectKey
	if t.Status != TaskStatusDone {
		t.Status = p.Status
		t.CompletedAt = p.CompletedAt
	}
	return t
}

// PlanTaskInput is one row of a plan save request.
type PlanTaskInput struct {
	ID    string
	Title string
	DueAt *time.Time
}

// ReconcileTasks builds the new task list of a plan from the desired rows. A row keeps the identity,
// status and feedback of an existing task when it names that task's ID or, failing that, carries the
// same title (case and surrounding whitespace ignored). Each existing task is matched at most once.
// Unmatched rows become fresh todo tasks with IDs from newID.
func ReconcileTasks(existing []PlanTask, rows []PlanTaskInput, newID func() string) []PlanTask {
	used := make([]bool, len(existing))
	byID := make(map[string]int, len(existing))
	for i, t := range existing {
		byID[t.ID] = i
	}

	match := func(row PlanTaskInput) int {
		if row.ID != "" {
			if i, ok := byID[row.ID]; ok && !used[i] {
				return i
			}
		}
		key := normalizeTitle(row.Title)
		for i, t := range existing {
			if !used[i] && normalizeTitle(t.Title) == key {
				return i
			}
		}
		return -1
	}

	out := make([]PlanTask, 0, len(rows))
	for _, row := range rows {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		if i := match(row); i >= 0 {
			used[i] = true
			t := existing[i]
			t.Title = title
			t.DueAt = row.DueAt
			out = append(out, t)
			continue
		}
		out = append(out, PlanTask{
			ID:     newID(),
			Title:  title,
			DueAt:  row.DueAt,
			Status: TaskStatusTodo,
		})
	}
	return out
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PlanRepository defines the interface for action plan persistence.
type PlanRepository interface {
	// GetPlan returns the plan for (account, exam), or nil when none exists yet.
	GetPlan(ctx context.Context, examID, accountID string) (*ActionPlan, error)
	GetPlanByID(ctx context.Context, planID string) (*ActionPlan, error)
	// UpsertPlan writes the plan keyed by (account, exam), replacing its task list.
	UpsertPlan(ctx context.Context, plan *ActionPlan) error
	// UpdateTask applies patch to the current version of the task under a row lock. It returns the
	// stored task and the report object key the patch replaced, if any.
	UpdateTask(ctx context.Context, planID string, patch TaskFeedbackPatch) (updated PlanTask, replacedKey string, err error)
}
