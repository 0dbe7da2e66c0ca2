package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Location represents a place with Google Maps data
type Location struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

// Implement driver.Valuer for JSONB storage
func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Implement sql.Scanner for JSONB retrieval
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("failed to unmarshal Location: %v", value)
	}
}
