package util

import (
	"database/sql"
	"time"
)

// StringToNullString converts a string to sql.NullString.
// An empty string is treated as NULL.
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// StringPtrToNullString converts an optional string to sql.NullString.
func StringPtrToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return StringToNullString(*s)
}

// NullStringToPtr returns nil for NULL.
func NullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// TimeToNullTime converts a time.Time to sql.NullTime.
// A zero time is treated as NULL.
func TimeToNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// TimePtrToNullTime converts an optional time to sql.NullTime.
func TimePtrToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return TimeToNullTime(*t)
}

// NullTimeToPtr returns nil for NULL.
func NullTimeToPtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// BoolToNumber maps a bool to the 0/1 NUMBER(1) columns used by Oracle.
func BoolToNumber(b bool) int {
	if b {
		return 1
	}
	return 0
}
