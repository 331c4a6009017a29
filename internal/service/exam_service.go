package service

import (
	"context"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

// ExamService exposes the participant's assigned exam and the finish slots.
type ExamService interface {
	GetMyExam(ctx context.Context, accountID string) (*dto.ExamResponse, error)
	ListFinishSlots(ctx context.Context) (*dto.SlotsData, error)
}

type examServiceImpl struct {
	examRepo domain.ExamRepository
	slotRepo domain.SlotRepository
}

func NewExamService(examRepo domain.ExamRepository, slotRepo domain.SlotRepository) ExamService {
	return &examServiceImpl{examRepo: examRepo, slotRepo: slotRepo}
}

func (s *examServiceImpl) GetMyExam(ctx context.Context, accountID string) (*dto.ExamResponse, error) {
	exam, err := s.examRepo.GetActiveExamForAccount(ctx, accountID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load assigned exam", err)
	}
	if exam == nil {
		return nil, domain.NewNoExamAssignedError(accountID)
	}
	resp := dto.NewExamResponse(exam)
	return &resp, nil
}

func (s *examServiceImpl) ListFinishSlots(ctx context.Context) (*dto.SlotsData, error) {
	slots, err := s.slotRepo.ListActiveSlots(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load finish slots", err)
	}
	data := dto.NewSlotsData(slots)
	return &data, nil
}

// ownedExam loads an exam and checks it is assigned to the account. Exams of other
// accounts are reported as missing.
func ownedExam(ctx context.Context, repo domain.ExamRepository, examID, accountID string) (*domain.Exam, error) {
	exam, err := repo.GetExamByID(ctx, examID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam", err)
	}
	if exam == nil || !exam.IsAssignedTo(accountID) {
		return nil, domain.NewExamNotFoundError(examID)
	}
	return exam, nil
}
