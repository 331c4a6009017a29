package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
)

// SubmissionService handles answers to the exam's scenario tasks.
type SubmissionService interface {
	SubmitTask(ctx context.Context, accountID string, req *dto.SubmitTaskRequest) (*dto.SubmitTaskData, error)
	AnalyzeTask(ctx context.Context, accountID string, req *dto.AnalyzeTaskRequest) (*dto.AnalyzeTaskData, error)
}

type submissionServiceImpl struct {
	examRepo       domain.ExamRepository
	submissionRepo domain.SubmissionRepository
	analyzer       domain.Analyzer
	now            func() time.Time
}

func NewSubmissionService(examRepo domain.ExamRepository, submissionRepo domain.SubmissionRepository, analyzer domain.Analyzer) SubmissionService {
	return &submissionServiceImpl{
		examRepo:       examRepo,
		submissionRepo: submissionRepo,
		analyzer:       analyzer,
		now:            time.Now,
	}
}

func (s *submissionServiceImpl) resolveTask(ctx context.Context, accountID, examID, taskID string) (*domain.Exam, domain.ExamTask, error) {
	exam, err := ownedExam(ctx, s.examRepo, examID, accountID)
	if err != nil {
		return nil, domain.ExamTask{}, err
	}
	task, ok := exam.Task(taskID)
	if !ok {
		return nil, domain.ExamTask{}, domain.ValidationErrors{domain.NewInvalidFormatError("taskId", taskID)}
	}
	return exam, task, nil
}

func (s *submissionServiceImpl) SubmitTask(ctx context.Context, accountID string, req *dto.SubmitTaskRequest) (*dto.SubmitTaskData, error) {
	_, task, err := s.resolveTask(ctx, accountID, req.ExamID, req.TaskID)
	if err != nil {
		return nil, err
	}

	sub := domain.NewSubmission(req.ExamID, task.ID, accountID, req.SubmissionText)
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.CreateSubmission(ctx, sub); err != nil {
		return nil, domain.NewInternalError("Failed to save submission", err)
	}

	logger.Get().Info("Submission created",
		zap.String("submissionID", sub.ID),
		zap.String("examID", sub.ExamID),
		zap.String("taskID", sub.TaskID),
		zap.String("accountID", accountID))
	return &dto.SubmitTaskData{SubmissionID: sub.ID}, nil
}

func (s *submissionServiceImpl) AnalyzeTask(ctx context.Context, accountID string, req *dto.AnalyzeTaskRequest) (*dto.AnalyzeTaskData, error) {
	exam, task, err := s.resolveTask(ctx, accountID, req.ExamID, req.TaskID)
	if err != nil {
		return nil, err
	}

	var sub *domain.Submission
	if req.SubmissionID != "" {
		sub, err = s.submissionRepo.GetSubmissionByID(ctx, req.SubmissionID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to load submission", err)
		}
		if sub == nil || sub.AccountID != accountID || sub.ExamID != req.ExamID || sub.TaskID != task.ID {
			return nil, domain.NewSubmissionNotFoundError(req.SubmissionID)
		}
		// The analysis is stored on the submission, so it has to score that submission's text.
		if sub.Text != req.SubmissionText {
			return nil, domain.ValidationErrors{{
				Field:   "submissionText",
				Code:    domain.CodeInvalidFormat,
				Message: "does not match the text of submission " + sub.ID,
			}}
		}
	} else {
		sub = domain.NewSubmission(req.ExamID, task.ID, accountID, req.SubmissionText)
		if err := sub.Validate(); err != nil {
			return nil, err
		}
		if err := s.submissionRepo.CreateSubmission(ctx, sub); err != nil {
			return nil, domain.NewInternalError("Failed to save submission", err)
		}
	}

	analysis, err := s.analyzer.Analyze(ctx, domain.AnalysisRequest{
		ExamTitle:       exam.Title,
		ScenarioBrief:   exam.ScenarioBrief,
		Constraints:     exam.Constraints,
		SuccessCriteria: exam.SuccessCriteria,
		TaskTitle:       task.Title,
		TaskPrompt:      task.Prompt,
		SubmissionText:  sub.Text,
	})
	if err != nil {
		logger.Get().Error("Submission analysis failed", zap.Error(err), zap.String("submissionID", sub.ID))
		return nil, err
	}
	analysis.Normalize()

	if err := s.submissionRepo.SaveAnalysis(ctx, sub.ID, analysis, s.now()); err != nil {
		if domain.HasCode(err, domain.CodeSubmissionNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to save analysis", err)
	}

	logger.Get().Info("Submission analysed",
		zap.String("submissionID", sub.ID),
		zap.Float64("score", analysis.Score),
		zap.Int("constraintViolations", len(analysis.ConstraintViolations)))
	return &dto.AnalyzeTaskData{Analysis: analysis, SubmissionID: sub.ID}, nil
}
