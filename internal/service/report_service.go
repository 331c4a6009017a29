package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"mission-desk/internal/cache"
	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
)

const reportCacheTTL = 24 * time.Hour

// ReportService produces and serves the single final report per (exam, account).
type ReportService interface {
	GetFinalReport(ctx context.Context, accountID, examID string) (*dto.ReportResponse, error)
	// GenerateFinalVerdict returns the stored report when one exists and only generates otherwise.
	GenerateFinalVerdict(ctx context.Context, accountID, examID string) (*dto.ReportResponse, error)
}

type reportServiceImpl struct {
	examRepo       domain.ExamRepository
	submissionRepo domain.SubmissionRepository
	planRepo       domain.PlanRepository
	reportRepo     domain.ReportRepository
	verdict        domain.VerdictGenerator
	cache          domain.Cache
	lockTTL        time.Duration
	group          singleflight.Group
}

// NewReportService creates the report service. lockTTL bounds how long a crashed generation
// can block others; it should exceed the verdict generator's timeout.
func NewReportService(
	examRepo domain.ExamRepository,
	submissionRepo domain.SubmissionRepository,
	planRepo domain.PlanRepository,
	reportRepo domain.ReportRepository,
	verdict domain.VerdictGenerator,
	cache domain.Cache,
	lockTTL time.Duration,
) ReportService {
	return &reportServiceImpl{
		examRepo:       examRepo,
		submissionRepo: submissionRepo,
		planRepo:       planRepo,
		reportRepo:     reportRepo,
		verdict:        verdict,
		cache:          cache,
		lockTTL:        lockTTL,
	}
}

func (s *reportServiceImpl) GetFinalReport(ctx context.Context, accountID, examID string) (*dto.ReportResponse, error) {
	if cached := s.cachedReport(ctx, examID, accountID); cached != nil {
		return cached, nil
	}

	report, err := s.reportRepo.GetReport(ctx, examID, accountID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load final report", err)
	}
	if report == nil {
		return nil, domain.NewReportNotFoundError(examID)
	}
	resp := dto.NewReportResponse(report)
	s.cacheReport(ctx, &resp)
	return &resp, nil
}

func (s *reportServiceImpl) GenerateFinalVerdict(ctx context.Context, accountID, examID string) (*dto.ReportResponse, error) {
	v, err, shared := s.group.Do(examID+"/"+accountID, func() (interface{}, error) {
		return s.generate(ctx, accountID, examID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debug("Verdict generation shared with a concurrent request", zap.String("examID", examID))
	}
	return v.(*dto.ReportResponse), nil
}

func (s *reportServiceImpl) generate(ctx context.Context, accountID, examID string) (*dto.ReportResponse, error) {
	if existing, err := s.existingReport(ctx, examID, accountID); existing != nil || err != nil {
		return existing, err
	}

	exam, err := ownedExam(ctx, s.examRepo, examID, accountID)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireLock(ctx, examID, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	// The previous lock holder may have finished between the first look and the lock.
	if existing, err := s.existingReport(ctx, examID, accountID); existing != nil || err != nil {
		return existing, err
	}

	input := domain.VerdictInput{Exam: exam}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subs, err := s.submissionRepo.ListAnalyzedSubmissions(gctx, examID, accountID)
		input.Submissions = subs
		return err
	})
	g.Go(func() error {
		plan, err := s.planRepo.GetPlan(gctx, examID, accountID)
		input.Plan = plan
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to gather mission results", err)
	}

	verdict, err := s.verdict.GenerateVerdict(ctx, input)
	if err != nil {
		logger.Get().Error("Verdict generation failed", zap.Error(err), zap.String("examID", examID), zap.String("accountID", accountID))
		return nil, err
	}

	report := &domain.FinalReport{
		ExamID:                    examID,
		AccountID:                 accountID,
		GlobalScore:               verdict.GlobalScore,
		ConstraintViolationsCount: input.ConstraintViolationsCount(),
		Status:                    verdict.Status,
		Message:                   verdict.Message,
		Strengths:                 verdict.Strengths,
		Weaknesses:                verdict.Weaknesses,
		Recommendations:           verdict.Recommendations,
		Report:                    verdict.Report,
	}
	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		if !domain.HasCode(err, domain.CodeConflict) {
			return nil, domain.NewInternalError("Failed to save final report", err)
		}
		// Another instance won the race; its report is the one.
		stored, getErr := s.reportRepo.GetReport(ctx, examID, accountID)
		if getErr != nil || stored == nil {
			return nil, domain.NewInternalError("Failed to load final report", errors.Join(err, getErr))
		}
		report = stored
	}

	logger.Get().Info("Final report generated",
		zap.String("reportID", report.ID),
		zap.String("examID", examID),
		zap.String("accountID", accountID),
		zap.Float64("globalScore", report.GlobalScore),
		zap.String("status", report.Status))

	resp := dto.NewReportResponse(report)
	s.cacheReport(ctx, &resp)
	return &resp, nil
}

func (s *reportServiceImpl) existingReport(ctx context.Context, examID, accountID string) (*dto.ReportResponse, error) {
	report, err := s.reportRepo.GetReport(ctx, examID, accountID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load final report", err)
	}
	if report == nil {
		return nil, nil
	}
	resp := dto.NewReportResponse(report)
	return &resp, nil
}

// acquireLock takes the per (exam, account) generation lock. Cache failures are tolerated:
// the unique key on final_reports still keeps a single report.
func (s *reportServiceImpl) acquireLock(ctx context.Context, examID, accountID string) (func(), error) {
	noop := func() {}
	if s.cache == nil {
		return noop, nil
	}
	key := cache.FinalReportLockKey(examID, accountID)
	ok, err := s.cache.SetNX(ctx, key, "1", s.lockTTL)
	if err != nil {
		logger.Get().Warn("Failed to take verdict lock, continuing without it", zap.Error(err), zap.String("key", key))
		return noop, nil
	}
	if !ok {
		return nil, domain.NewReportInProgressError(examID)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Get().Warn("Failed to release verdict lock", zap.Error(err), zap.String("key", key))
		}
	}, nil
}

func (s *reportServiceImpl) cachedReport(ctx context.Context, examID, accountID string) *dto.ReportResponse {
	if s.cache == nil {
		return nil
	}
	key := cache.FinalReportKey(examID, accountID)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Report cache read failed", zap.Error(err), zap.String("key", key))
		}
		return nil
	}
	var resp dto.ReportResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.Get().Warn("Dropping malformed cached report", zap.Error(err), zap.String("key", key))
		_ = s.cache.Delete(ctx, key)
		return nil
	}
	return &resp
}

func (s *reportServiceImpl) cacheReport(ctx context.Context, resp *dto.ReportResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	key := cache.FinalReportKey(resp.ExamID, resp.AccountID)
	if err := s.cache.Set(ctx, key, string(raw), reportCacheTTL); err != nil {
		logger.Get().Warn("Report cache write failed", zap.Error(err), zap.String("key", key))
	}
}
