package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mission-desk/internal/domain"
	"mission-desk/internal/repository/models"
	"mission-desk/internal/util"

	"github.com/jmoiron/sqlx"
)

const accountColumns = `id "id",
		participant_id "participant_id",
		display_name "display_name",
		password_hash "password_hash",
		created_at "created_at",
		updated_at "updated_at"`

// AccountDatabaseAdapter implements domain.AccountRepository using sqlx.
type AccountDatabaseAdapter struct {
	db *sqlx.DB
}

func NewAccountDatabaseAdapter(db *sqlx.DB) domain.AccountRepository {
	return &AccountDatabaseAdapter{db: db}
}

// CreateAccount implements domain.AccountRepository
func (a *AccountDatabaseAdapter) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = util.NewULID()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	m := fromDomainAccount(account)

	query := `INSERT INTO accounts (id, participant_id, display_name, password_hash, created_at, updated_at)
	VALUES (:1, :2, :3, :4, :5, :6)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		m.ID, m.ParticipantID, m.DisplayName, m.PasswordHash, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.CodeConflict, fmt.Sprintf("participant %s already exists", account.ParticipantID), err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByParticipantID returns nil, nil when no account matches.
func (a *AccountDatabaseAdapter) GetAccountByParticipantID(ctx context.Context, participantID string) (*domain.Account, error) {
	var m models.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE participant_id = :1`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, participantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by participant id: %w", err)
	}
	return toDomainAccount(&m), nil
}

// GetAccountByID returns nil, nil when no account matches.
func (a *AccountDatabaseAdapter) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var m models.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = :1`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}
	return toDomainAccount(&m), nil
}
