package repository

import (
	"context"
	"fmt"

	"mission-desk/internal/domain"
	"mission-desk/internal/repository/models"
	"mission-desk/internal/util"

	"github.com/jmoiron/sqlx"
)

// SlotDatabaseAdapter implements domain.SlotRepository using sqlx.
type SlotDatabaseAdapter struct {
	db *sqlx.DB
}

func NewSlotDatabaseAdapter(db *sqlx.DB) domain.SlotRepository {
	return &SlotDatabaseAdapter{db: db}
}

// ListActiveSlots returns active slots ordered by start time.
func (a *SlotDatabaseAdapter) ListActiveSlots(ctx context.Context) ([]*domain.FinishSlot, error) {
	var rows []models.FinishSlot
	query := `SELECT
		id "id",
		title "title",
		starts_at "starts_at",
		ends_at "ends_at",
		active "active"
	FROM finish_slots
	WHERE active = 1
	ORDER BY starts_at ASC`

	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list finish slots: %w", err)
	}

	out := make([]*domain.FinishSlot, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainSlot(&rows[i]))
	}
	return out, nil
}

// SaveSlot inserts or replaces a slot.
func (a *SlotDatabaseAdapter) SaveSlot(ctx context.Context, slot *domain.FinishSlot) error {
	if slot.ID == "" {
		slot.ID = util.NewULID()
	}
	active := util.BoolToNumber(slot.Active)

	query := `MERGE INTO finish_slots f
	USING (SELECT :1 AS id FROM dual) s
	ON (f.id = s.id)
	WHEN MATCHED THEN UPDATE SET f.title = :2, f.starts_at = :3, f.ends_at = :4, f.active = :5
	WHEN NOT MATCHED THEN INSERT (id, title, starts_at, ends_at, active)
	VALUES (:6, :7, :8, :9, :10)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		slot.ID,
		slot.Title, slot.StartsAt, slot.EndsAt, active,
		slot.ID, slot.Title, slot.StartsAt, slot.EndsAt, active,
	)
	if err != nil {
		return fmt.Errorf("failed to save finish slot: %w", err)
	}
	return nil
}
