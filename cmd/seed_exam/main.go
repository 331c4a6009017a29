package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"mission-desk/cmd/seed_exam/internal/seedmodels"
	"mission-desk/internal/config"
	"mission-desk/internal/database"
	"mission-desk/internal/domain"
	"mission-desk/internal/logger"
	"mission-desk/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSeedFilePath = "configs/seed_data/mission_exam.json"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		// If logger is not initialized yet, use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	seedFilePath := defaultSeedFilePath
	if len(os.Args) > 1 {
		seedFilePath = os.Args[1]
	}

	log.Info("Starting mission seeding process...")
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Loading seed data from file", zap.String("path", seedFilePath))
	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}
	var seed seedmodels.SeedFile
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}

	accountRepo := repository.NewAccountDatabaseAdapter(db)
	examRepo := repository.NewExamDatabaseAdapter(db)
	slotRepo := repository.NewSlotDatabaseAdapter(db)

	accountIDs := make(map[string]string, len(seed.Accounts))
	for _, sa := range seed.Accounts {
		id, err := seedAccount(ctx, accountRepo, sa)
		if err != nil {
			log.Fatal("Failed to seed account", zap.String("participantID", sa.ParticipantID), zap.Error(err))
		}
		accountIDs[sa.ParticipantID] = id
		log.Info("Account ready", zap.String("participantID", sa.ParticipantID), zap.String("accountID", id))
	}

	for _, se := range seed.Exams {
		exam := toDomainExam(se)
		if se.AssignTo != "" {
			id, ok := accountIDs[se.AssignTo]
			if !ok {
				log.Fatal("Exam assigned to unknown participant", zap.String("exam", se.Title), zap.String("participantID", se.AssignTo))
			}
			exam.AssignedAccountID = &id
		}
		if err := examRepo.SaveExam(ctx, exam); err != nil {
			log.Fatal("Failed to seed exam", zap.String("exam", se.Title), zap.Error(err))
		}
		log.Info("Exam seeded", zap.String("examID", exam.ID), zap.String("title", exam.Title))
	}

	for _, ss := range seed.Slots {
		slot := &domain.FinishSlot{ID: ss.ID, Title: ss.Title, StartsAt: ss.StartsAt, EndsAt: ss.EndsAt, Active: true}
		if err := slotRepo.SaveSlot(ctx, slot); err != nil {
			log.Fatal("Failed to seed finish slot", zap.String("slot", ss.Title), zap.Error(err))
		}
	}
	log.Info("Mission seeding process completed.", zap.Int("slots", len(seed.Slots)))
}

// seedAccount creates the account unless the participant already exists. It returns the account ID.
func seedAccount(ctx context.Context, repo domain.AccountRepository, sa seedmodels.SeedAccount) (string, error) {
	existing, err := repo.GetAccountByParticipantID(ctx, sa.ParticipantID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(sa.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	account := domain.NewAccount(sa.ParticipantID, sa.DisplayName, string(hash))
	if err := account.Validate(); err != nil {
		return "", err
	}
	if err := repo.CreateAccount(ctx, account); err != nil {
		return "", err
	}
	return account.ID, nil
}

func toDomainExam(se seedmodels.SeedExam) *domain.Exam {
	tasks := make([]domain.ExamTask, 0, len(se.Tasks))
	for _, t := range se.Tasks {
		tasks = append(tasks, domain.ExamTask{ID: t.ID, Title: t.Title, Prompt: t.Prompt})
	}
	return &domain.Exam{
		ID:              se.ID,
		Title:           se.Title,
		ScenarioBrief:   se.ScenarioBrief,
		Constraints:     se.Constraints,
		SuccessCriteria: se.SuccessCriteria,
		Tasks:           tasks,
		VerdictRules:    se.VerdictRules,
		Active:          true,
	}
}
