package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", value)
	}
}

// StringSlice is stored as a JSON array in a CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	b, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("StringSlice Scan: %w", err)
	}
	// NULL, empty and the literal "null" all read back as an empty list.
	if len(b) == 0 || string(b) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(b, s)
}

// JSON stores any value as a JSON document. A nil Data pointer maps to SQL NULL.
type JSON[T any] struct {
	Data *T
}

// NewJSON wraps v; a nil v is stored as NULL.
func NewJSON[T any](v *T) JSON[T] {
	return JSON[T]{Data: v}
}

// Value implements the driver.Valuer interface
func (j JSON[T]) Value() (driver.Value, error) {
	if j.Data == nil {
		return nil, nil
	}
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (j *JSON[T]) Scan(value interface{}) error {
	b, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("JSON Scan: %w", err)
	}
	if len(b) == 0 || string(b) == "null" {
		j.Data = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	j.Data = &v
	return nil
}
