package domain

import (
	"fmt"
	"time"
)

// CompletionPolicy decides whether an analysed plan task becomes done.
type CompletionPolicy interface {
	Name() string
	IsDone(task PlanTask) bool
}

const (
	PolicyManual         = "manual"
	PolicyOnFeedback     = "on_feedback"
	PolicyScoreThreshold = "score_threshold"
)

type manualPolicy struct{}

func (manualPolicy) Name() string         { return PolicyManual }
func (manualPolicy) IsDone(PlanTask) bool { return false }

type onFeedbackPolicy struct{}

func (onFeedbackPolicy) Name() string { return PolicyOnFeedback }
func (onFeedbackPolicy) IsDone(t PlanTask) bool {
	return t.Feedback != nil
}

type scoreThresholdPolicy struct {
	threshold float64
}

func (p scoreThresholdPolicy) Name() string { return PolicyScoreThreshold }
func (p scoreThresholdPolicy) IsDone(t PlanTask) bool {
	return t.Feedback != nil && t.Feedback.Score >= p.threshold
}

// NewCompletionPolicy resolves a policy by its configured name.
func NewCompletionPolicy(name string, threshold float64) (CompletionPolicy, error) {
	switch name {
	case "", PolicyManual:
		return manualPolicy{}, nil
	case PolicyOnFeedback:
		return onFeedbackPolicy{}, nil
	case PolicyScoreThreshold:
		if threshold < 0 || threshold > 100 {
			return nil, fmt.Errorf("score threshold must be within [0,100], got %v", threshold)
		}
		return scoreThresholdPolicy{threshold: threshold}, nil
	default:
		return nil, fmt.Errorf("unknown task completion policy: %q", name)
	}
}

// ApplyCompletion moves a todo task to done when the policy says so. Done tasks stay done.
func ApplyCompletion(policy CompletionPolicy, task PlanTask, now time.Time) PlanTask {
	if task.Status == TaskStatusDone {
		return task
	}
	if task.Status == "" {
		task.Status = TaskStatusTodo
	}
	if policy.IsDone(task) {
		task.Status = TaskStatusDone
		completed := now
		task.CompletedAt = &completed
	}
	return task
}
