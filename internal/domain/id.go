package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a record within its collection.
// Ids are positive integers; newly created records get time-based ids.
type ID int64

// ParseID converts a string reference (for example a selection value) to an ID.
// Surrounding whitespace is ignored.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(n), nil
}

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts a JSON integer or a string holding one.
func (id *ID) UnmarshalJSON(data []byte) error {
	n, err := decodeLooseInt(data)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n)
	return nil
}

// decodeLooseInt decodes an integer that may have been stored as a numeric
// string. Fractions, empty strings and null are rejected.
func decodeLooseInt(data []byte) (int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", s)
		}
		return n, nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %s", data)
	}
	return n, nil
}
