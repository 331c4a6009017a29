package domain

import (
	"context"
	"time"
)

// FinishSlot is an admin-authored time window shown to the participant after the mission.
type FinishSlot struct {
	ID       string
	Title    string
	StartsAt time.Time
	EndsAt   time.Time
	Active   bool
}

// SlotRepository defines the read access to finish slots.
type SlotRepository interface {
	ListActiveSlots(ctx context.Context) ([]*FinishSlot, error)
	SaveSlot(ctx context.Context, slot *FinishSlot) error
}
