package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ContextMap carries the auxiliary event fields (job id, job title, ...) kept
// for deep-linking. It is an opaque payload: stored as JSONB and never
// reinterpreted after creation.
type ContextMap map[string]string

// Value implements driver.Valuer so sqlx can bind the map to a jsonb column.
func (c ContextMap) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (c *ContextMap) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("context map: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, c)
}
