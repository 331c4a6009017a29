package client

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
)

// ReportAPI is the part of the backend the report generator talks to.
type ReportAPI interface {
	GetFinalReport(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error)
	GenerateFinalVerdict(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error)
}

// ReportGenerator fetches the final report of an exam, generating it when none exists yet.
type ReportGenerator struct {
	api     ReportAPI
	session *Session
	group   singleflight.Group

	mu   sync.Mutex
	memo map[string]*domain.FinalReport
}

func NewReportGenerator(api ReportAPI, session *Session) *ReportGenerator {
	return &ReportGenerator{
		api:     api,
		session: session,
		memo:    make(map[string]*domain.FinalReport),
	}
}

// GetOrGenerateFinalReport returns the stored report of examID. Only a missing report triggers
// generation; any other error is returned as is. Concurrent calls share one round trip.
func (g *ReportGenerator) GetOrGenerateFinalReport(ctx context.Context, examID string) (*domain.FinalReport, error) {
	if r := g.cached(examID); r != nil {
		return r, nil
	}

	v, err, _ := g.group.Do(examID, func() (interface{}, error) {
		if r := g.cached(examID); r != nil {
			return r, nil
		}
		resp, err := g.api.GetFinalReport(ctx, g.session, examID)
		if errors.Is(err, ErrNotFound) {
			logger.Get().Info("No final report yet, generating", zap.String("examID", examID))
			resp, err = g.api.GenerateFinalVerdict(ctx, g.session, examID)
		}
		if err != nil {
			return nil, err
		}
		report := reportFromDTO(resp)
		g.mu.Lock()
		g.memo[examID] = report
		g.mu.Unlock()
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	r := *v.(*domain.FinalReport)
	return &r, nil
}

func (g *ReportGenerator) cached(examID string) *domain.FinalReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.memo[examID]; ok {
		out := *r
		return &out
	}
	return nil
}
