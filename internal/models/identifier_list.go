package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IdentifierList is an ordered list of portfolio identifiers stored as a JSON array.
type IdentifierList []string

// Value implements driver.Valuer.
func (l IdentifierList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IdentifierList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = IdentifierList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("identifier list: unsupported source type %T", src)
	}

	if len(raw) == 0 {
		*l = IdentifierList{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("identifier list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// Contains reports whether identifier is in the list.
func (l IdentifierList) Contains(identifier string) bool {
	for _, v := range l {
		if v == identifier {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of identifier removed.
func (l IdentifierList) Without(identifier string) IdentifierList {
	out := make(IdentifierList, 0, len(l))
	for _, v := range l {
		if v != identifier {
			out = append(out, v)
		}
	}
	return out
}
