package domain

import (
	"database/sql/driver"
	"encoding/json"
)

// Record is a free-form JSON object such as notification or analytics
// metadata. The zero value is an empty object.
type Record struct {
	Entries map[string]any
}

// With returns a copy of rec with key set to value.
func (rec Record) With(key string, value any) Record {
	entries := make(map[string]any, len(rec.Entries)+1)
	for k, v := range rec.Entries {
		entries[k] = v
	}
	entries[key] = value
	return Record{entries}
}

func (rec *Record) normalize() {
	if len(rec.Entries) == 0 {
		rec.Entries = nil
	}
}

func (rec *Record) UnmarshalJSON(data []byte) error {
	err := json.Unmarshal(data, &rec.Entries)
	if err != nil {
		return err
	}
	rec.normalize()
	return nil
}

func (rec Record) MarshalJSON() ([]byte, error) {
	if rec.Entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(rec.Entries)
}

// Value stores the record as a jsonb object, never as NULL.
func (rec Record) Value() (driver.Value, error) {
	return rec.MarshalJSON()
}
