package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	AccountID     string `json:"account_id"`
	ParticipantID string `json:"participant_id"`
	jwt.RegisteredClaims
}

// LoginRequest is the participant login body.
type LoginRequest struct {
	ParticipantID string `json:"participantId" validate:"required,max=100"`
	Password      string `json:"password" validate:"required,max=200"`
}

// LoginResponse carries the bearer token and the account it is scoped to.
type LoginResponse struct {
	Token         string    `json:"token"`
	AccountID     string    `json:"accountId"`
	ParticipantID string    `json:"participantId"`
	DisplayName   string    `json:"displayName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
