package util

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewULID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewULID()
		assert.Len(t, id, 26)
		assert.True(t, IsULID(id))
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100)
	assert.False(t, IsULID("not-a-ulid"))
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, StringToNullString("").Valid)
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, StringToNullString("x"))
	assert.False(t, StringPtrToNullString(nil).Valid)
	assert.Nil(t, NullStringToPtr(sql.NullString{}))
	assert.Equal(t, "y", *NullStringToPtr(sql.NullString{String: "y", Valid: true}))

	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	assert.False(t, TimeToNullTime(time.Time{}).Valid)
	assert.False(t, TimePtrToNullTime(nil).Valid)
	assert.Equal(t, now, TimePtrToNullTime(&now).Time)
	assert.Nil(t, NullTimeToPtr(sql.NullTime{}))
	assert.Equal(t, now, *NullTimeToPtr(sql.NullTime{Time: now, Valid: true}))

	assert.Equal(t, 1, BoolToNumber(true))
	assert.Equal(t, 0, BoolToNumber(false))
}
