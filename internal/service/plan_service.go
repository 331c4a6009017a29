package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
	"mission-desk/internal/util"
)

var pdfMagic = []byte("%PDF-")

// AnalyzePlanTaskInput is the decoded multipart body of a plan task analysis.
type AnalyzePlanTaskInput struct {
	PlanID     string
	TaskID     string
	ReportText string
	PDF        []byte
}

// PlanService manages the participant's action plan.
type PlanService interface {
	GetMyPlan(ctx context.Context, accountID, examID string) (*dto.PlanResponse, error)
	SavePlan(ctx context.Context, accountID string, req *dto.SavePlanRequest) (*dto.PlanResponse, error)
	AnalyzePlanTask(ctx context.Context, accountID string, in AnalyzePlanTaskInput) (*domain.PlanTask, error)
}

type planServiceImpl struct {
	examRepo    domain.ExamRepository
	planRepo    domain.PlanRepository
	analyzer    domain.Analyzer
	storage     domain.ObjectStorage
	txManager   domain.TransactionManager
	policy      domain.CompletionPolicy
	maxPDFBytes int64
	now         func() time.Time
}

func NewPlanService(
	examRepo domain.ExamRepository,
	planRepo domain.PlanRepository,
	analyzer domain.Analyzer,
	storage domain.ObjectStorage,
	txManager domain.TransactionManager,
	policy domain.CompletionPolicy,
	maxPDFBytes int64,
) PlanService {
	return &planServiceImpl{
		examRepo:    examRepo,
		planRepo:    planRepo,
		analyzer:    analyzer,
		storage:     storage,
		txManager:   txManager,
		policy:      policy,
		maxPDFBytes: maxPDFBytes,
		now:         time.Now,
	}
}

func (s *planServiceImpl) GetMyPlan(ctx context.Context, accountID, examID string) (*dto.PlanResponse, error) {
	if strings.TrimSpace(examID) == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("examId")}
	}
	plan, err := s.planRepo.GetPlan(ctx, examID, accountID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load plan", err)
	}
	if plan == nil {
		return nil, domain.NewPlanNotFoundError()
	}
	resp := dto.NewPlanResponse(plan)
	return &resp, nil
}

func (s *planServiceImpl) SavePlan(ctx context.Context, accountID string, req *dto.SavePlanRequest) (*dto.PlanResponse, error) {
	if _, err := ownedExam(ctx, s.examRepo, req.ExamID, accountID); err != nil {
		return nil, err
	}

	rows := make([]domain.PlanTaskInput, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		row := domain.PlanTaskInput{ID: t.ID, Title: t.Title}
		if t.DueAt != nil {
			due := t.DueAt.UTC()
			row.DueAt = &due
		}
		rows = append(rows, row)
	}

	var saved *domain.ActionPlan
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.planRepo.GetPlan(txCtx, req.ExamID, accountID)
		if err != nil {
			return err
		}
		plan := &domain.ActionPlan{ExamID: req.ExamID, AccountID: accountID}
		var current []domain.PlanTask
		if existing != nil {
			plan = existing
			current = existing.Tasks
		}
		plan.Tasks = domain.ReconcileTasks(current, rows, util.NewULID)
		if err := s.planRepo.UpsertPlan(txCtx, plan); err != nil {
			return err
		}
		saved = plan
		return nil
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to save plan", err)
	}

	logger.Get().Info("Plan saved",
		zap.String("planID", saved.ID),
		zap.String("examID", saved.ExamID),
		zap.Int("tasks", len(saved.Tasks)))
	resp := dto.NewPlanResponse(saved)
	return &resp, nil
}

func (s *planServiceImpl) validateAttachment(in AnalyzePlanTaskInput) error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(in.ReportText) == "" {
		errs = append(errs, domain.NewMissingFieldError("reportText"))
	}
	if len(in.PDF) == 0 {
		errs = append(errs, domain.NewMissingFieldError("pdf"))
	}
	if len(errs) > 0 {
		return errs
	}
	if int64(len(in.PDF)) > s.maxPDFBytes {
		return domain.NewInvalidAttachmentError(fmt.Sprintf("PDF exceeds the %d byte limit", s.maxPDFBytes))
	}
	if !bytes.HasPrefix(in.PDF, pdfMagic) {
		return domain.NewInvalidAttachmentError("Attachment is not a PDF document")
	}
	return nil
}

func (s *planServiceImpl) AnalyzePlanTask(ctx context.Context, accountID string, in AnalyzePlanTaskInput) (*domain.PlanTask, error) {
	if err := s.validateAttachment(in); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetPlanByID(ctx, in.PlanID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load plan", err)
	}
	if plan == nil || plan.AccountID != accountID {
		return nil, domain.NewPlanNotFoundError()
	}
	idx := plan.TaskByID(in.TaskID)
	if idx < 0 {
		return nil, domain.NewPlanTaskNotFoundError(in.TaskID)
	}
	task := plan.Tasks[idx]

	exam, err := s.examRepo.GetExamByID(ctx, plan.ExamID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam", err)
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(plan.ExamID)
	}

	key := fmt.Sprintf("plans/%s/%s/%s.pdf", plan.ID, task.ID, util.NewULID())
	objectKey, err := s.storage.Upload(ctx, key, bytes.NewReader(in.PDF), int64(len(in.PDF)), "application/pdf")
	if err != nil {
		return nil, domain.NewStorageError(err)
	}

	analysis, err := s.analyzer.Analyze(ctx, domain.AnalysisRequest{
		ExamTitle:       exam.Title,
		ScenarioBrief:   exam.ScenarioBrief,
		Constraints:     exam.Constraints,
		SuccessCriteria: exam.SuccessCriteria,
		TaskTitle:       task.Title,
		SubmissionText:  in.ReportText,
		PDF:             in.PDF,
	})
	if err != nil {
		s.discardObject(objectKey)
		logger.Get().Error("Plan task analysis failed", zap.Error(err), zap.String("planID", plan.ID), zap.String("taskID", task.ID))
		return nil, err
	}
	analysis.Normalize()

	// The stored task decides whether it is already done; see TaskFeedbackPatch.Apply.
	completed := domain.ApplyCompletion(s.policy, domain.PlanTask{Feedback: analysis}, s.now().UTC())
	patch := domain.TaskFeedbackPatch{
		TaskID:          task.ID,
		Feedback:        analysis,
		ReportText:      in.ReportText,
		ReportObjectKey: objectKey,
		Status:          completed.Status,
		CompletedAt:     completed.CompletedAt,
	}

	var replacedKey string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		task, replacedKey, txErr = s.planRepo.UpdateTask(txCtx, plan.ID, patch)
		return txErr
	})
	if err != nil {
		s.discardObject(objectKey)
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewInternalError("Failed to save task feedback", err)
	}
	if replacedKey != "" {
		s.discardObject(replacedKey)
	}

	logger.Get().Info("Plan task analysed",
		zap.String("planID", plan.ID),
		zap.String("taskID", task.ID),
		zap.Float64("score", analysis.Score),
		zap.String("status", string(task.Status)),
		zap.String("policy", s.policy.Name()))
	return &task, nil
}

// discardObject removes a report PDF no task points at any more. Failures only get logged.
func (s *planServiceImpl) discardObject(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Get().Warn("Failed to delete orphaned report PDF", zap.Error(err), zap.String("key", key))
	}
}
