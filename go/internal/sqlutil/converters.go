package sqlutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go types and sql.Null* types

// ToNullUUID converts a Go UUID pointer to uuid.NullUUID
func ToNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{Valid: false}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// FromNullUUID converts uuid.NullUUID to Go UUID pointer
func FromNullUUID(val uuid.NullUUID) *uuid.UUID {
	if !val.Valid {
		return nil
	}
	return &val.UUID
}

// ToSqlTime converts a Go time pointer to sql.NullTime
func ToSqlTime(val *time.Time) sql.NullTime {
	if val == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *val, Valid: true}
}

// FromSqlTime converts sql.NullTime to Go time pointer
func FromSqlTime(val sql.NullTime) *time.Time {
	if !val.Valid {
		return nil
	}
	t := val.Time.UTC()
	return &t
}

// ToNullJSON marshals any value into a nullable JSONB column. nil maps to SQL
// NULL.
func ToNullJSON(val any) (pqtype.NullRawMessage, error) {
	if val == nil {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	data, err := json.Marshal(val)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("marshal json column: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}

// FromNullJSON decodes a nullable JSONB column. Numbers come back as
// json.Number so integers keep their precision.
func FromNullJSON(val pqtype.NullRawMessage) (any, error) {
	if !val.Valid || len(val.RawMessage) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(val.RawMessage))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("unmarshal json column: %w", err)
	}
	return out, nil
}
