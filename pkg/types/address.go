package types

import (
	"database/sql/driver"
	"strings"
)

// Address is a postal address stored as a JSON document.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// IsZero reports whether no address field was provided.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.ZipCode) == "" &&
		strings.TrimSpace(a.Country) == ""
}

// Value marshals Address into JSON.
func (a Address) Value() (driver.Value, error) {
	return JSONValue(a)
}

// Scan decodes the JSON column.
func (a *Address) Scan(value interface{}) error {
	*a = Address{}
	return ScanJSON(value, a)
}
