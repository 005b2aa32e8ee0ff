package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONValue marshals v for a JSONB (postgres) or TEXT (sqlite) column.
func JSONValue(v any) (driver.Value, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// ScanJSON decodes a JSON column value into dest. A NULL column leaves dest untouched.
func ScanJSON(value any, dest any) error {
	if value == nil {
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
