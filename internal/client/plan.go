package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
)

// LocalInputLayout is the layout of a local date-time picker value.
const LocalInputLayout = "2006-01-02T15:04"

// PlanAPI is the part of the backend the plan manager talks to.
type PlanAPI interface {
	GetMyPlan(ctx context.Context, s *Session, examID string) (*dto.PlanResponse, error)
	SavePlan(ctx context.Context, s *Session, req dto.SavePlanRequest) (*dto.PlanResponse, error)
	AnalyzePlanTask(ctx context.Context, s *Session, planID, taskID, reportText string, pdf []byte) (*domain.PlanTask, error)
}

// DraftRow is one editable plan row as the form holds it. DueAt is a local picker value or RFC 3339,
// empty for no deadline.
type DraftRow struct {
	ID    string
	Title string
	DueAt string
}

// TaskDraft is the not yet analysed report of one plan task.
type TaskDraft struct {
	ReportText string
	PDF        []byte
}

// PlanManager holds the participant's action plan for one session.
type PlanManager struct {
	api     PlanAPI
	session *Session
	loc     *time.Location

	mu        sync.Mutex
	plan      *domain.ActionPlan
	drafts    map[string]TaskDraft
	analyzing map[string]bool
	saving    bool
	dirty     bool // plan rows edited since the last load or save
	lastError string
}

// NewPlanManager creates a manager interpreting picker values in loc; nil means time.Local.
func NewPlanManager(api PlanAPI, session *Session, loc *time.Location) *PlanManager {
	if loc == nil {
		loc = time.Local
	}
	return &PlanManager{
		api:       api,
		session:   session,
		loc:       loc,
		drafts:    make(map[string]TaskDraft),
		analyzing: make(map[string]bool),
	}
}

// Plan returns a copy of the held plan, nil before one exists.
func (p *PlanManager) Plan() *domain.ActionPlan {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clonePlan(p.plan)
}

func (p *PlanManager) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

// LoadPlan fetches the plan of examID. A nil plan with a nil error means none was saved yet.
func (p *PlanManager) LoadPlan(ctx context.Context, examID string) (*domain.ActionPlan, error) {
	resp, err := p.api.GetMyPlan(ctx, p.session, examID)
	if errors.Is(err, ErrNotFound) {
		p.mu.Lock()
		p.plan = nil
		p.lastError = ""
		p.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		p.setError(err)
		return nil, err
	}

	plan := planFromDTO(resp)
	p.mu.Lock()
	p.plan = plan
	p.dirty = false
	p.lastError = ""
	p.mu.Unlock()
	return clonePlan(plan), nil
}

// SavePlan sends the full task list built from rows. Rows with a blank title are dropped.
func (p *PlanManager) SavePlan(ctx context.Context, examID string, rows []DraftRow) (*domain.ActionPlan, error) {
	tasks, err := p.buildTasks(rows)
	if err != nil {
		p.setError(err)
		return nil, err
	}

	p.mu.Lock()
	if p.saving {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: save plan", ErrActionInProgress)
	}
	p.saving = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.saving = false
		p.mu.Unlock()
	}()

	resp, err := p.api.SavePlan(ctx, p.session, dto.SavePlanRequest{ExamID: examID, Tasks: tasks})
	if err != nil {
		p.setError(err)
		return nil, err
	}

	plan := planFromDTO(resp)
	p.mu.Lock()
	p.plan = plan
	p.dirty = false
	p.lastError = ""
	p.mu.Unlock()
	logger.Get().Debug("Action plan saved", zap.String("planID", plan.ID), zap.Int("tasks", len(plan.Tasks)))
	return clonePlan(plan), nil
}

func (p *PlanManager) buildTasks(rows []DraftRow) ([]dto.PlanTaskInput, error) {
	tasks := make([]dto.PlanTaskInput, 0, len(rows))
	for i, row := range rows {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		due, err := ParseDueAt(row.DueAt, p.loc)
		if err != nil {
			return nil, preconditionf("row %d: %v", i+1, err)
		}
		tasks = append(tasks, dto.PlanTaskInput{ID: row.ID, Title: title, DueAt: due})
	}
	return tasks, nil
}

// ParseDueAt turns a picker value into a UTC instant. Values without a zone are read in loc.
// Empty input means no deadline.
func ParseDueAt(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation(LocalInputLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q", value)
	}
	t = t.UTC()
	return &t, nil
}

// SetTaskDraft keeps the report being prepared for taskID. Drafts count as unsaved until their
// analysis succeeds; dirty only tracks the plan rows.
func (p *PlanManager) SetTaskDraft(taskID string, draft TaskDraft) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drafts[taskID] = draft
}

func (p *PlanManager) TaskDraft(taskID string) (TaskDraft, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.drafts[taskID]
	return d, ok
}

// AnalyzeTask uploads the report of one task and merges the analysed task into the held plan.
// Both reportText and pdf are required. The task's draft is cleared only when the call succeeds.
func (p *PlanManager) AnalyzeTask(ctx context.Context, planID, taskID, reportText string, pdf []byte) (*domain.PlanTask, error) {
	switch {
	case planID == "" || taskID == "":
		err := preconditionf("save the plan before analysing a task")
		p.setError(err)
		return nil, err
	case strings.TrimSpace(reportText) == "":
		err := preconditionf("report text is required")
		p.setError(err)
		return nil, err
	case len(pdf) == 0:
		err := preconditionf("a PDF report is required")
		p.setError(err)
		return nil, err
	}

	p.mu.Lock()
	if p.analyzing[taskID] {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: analyze task %s", ErrActionInProgress, taskID)
	}
	p.analyzing[taskID] = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.analyzing, taskID)
		p.mu.Unlock()
	}()

	task, err := p.api.AnalyzePlanTask(ctx, p.session, planID, taskID, reportText, pdf)
	if err != nil {
		p.setError(err)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plan != nil && p.plan.ID == planID {
		p.plan = mergeTask(p.plan, *task)
	}
	delete(p.drafts, taskID)
	p.lastError = ""
	out := *task
	return &out, nil
}

// MarkDirty records edits the form has not saved yet.
func (p *PlanManager) MarkDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = true
}

// HasUnsavedChanges reports edited rows or report drafts that would be lost on logout.
func (p *PlanManager) HasUnsavedChanges() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty || len(p.drafts) > 0
}

func (p *PlanManager) setError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastError = userMessage(err)
}

// mergeTask returns a copy of plan with the task of the same ID replaced.
func mergeTask(plan *domain.ActionPlan, task domain.PlanTask) *domain.ActionPlan {
	out := clonePlan(plan)
	if i := out.TaskByID(task.ID); i >= 0 {
		out.Tasks[i] = task
	}
	return out
}

func clonePlan(plan *domain.ActionPlan) *domain.ActionPlan {
	if plan == nil {
		return nil
	}
	out := *plan
	out.Tasks = make([]domain.PlanTask, len(plan.Tasks))
	copy(out.Tasks, plan.Tasks)
	return &out
}
