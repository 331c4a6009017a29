package domain

import (
	"context"
	"time"
)

// Account represents one authenticated participant scoped to Service 2.
type Account struct {
	ID            string
	ParticipantID string
	DisplayName   string
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAccount creates a new Account instance
func NewAccount(participantID, displayName, passwordHash string) *Account {
	now := time.Now()
	return &Account{
		ParticipantID: participantID,
		DisplayName:   displayName,
		PasswordHash:  passwordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate validates the account
func (a *Account) Validate() error {
	var errs ValidationErrors
	if a.ParticipantID == "" {
		errs = append(errs, NewMissingFieldError("participant_id"))
	}
	if a.PasswordHash == "" {
		errs = append(errs, NewMissingFieldError("password_hash"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AccountRepository defines the interface for account persistence.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByParticipantID(ctx context.Context, participantID string) (*Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*Account, error)
}
