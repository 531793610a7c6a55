package paging

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Cursor is the position just past the last item of a page.
type Cursor struct {
	CreatedAt  string `json:"createdAt"`
	TiebreakID string `json:"tiebreakId"`
}

type rawCursor struct {
	CreatedAt  *string `json:"createdAt"`
	TiebreakID *string `json:"tiebreakId"`
}

// CursorAt builds a cursor from a row's creation time and tie-break id.
func CursorAt(createdAt time.Time, tiebreakID string) Cursor {
	return Cursor{
		CreatedAt:  createdAt.UTC().Format(time.RFC3339Nano),
		TiebreakID: tiebreakID,
	}
}

// Encode serializes cursor as unpadded base64url JSON. Ids must be valid
// UTF-8 to round-trip; invalid bytes come back as U+FFFD. Row ids are always
// uuids.
func Encode(cursor Cursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		// a struct of two strings always marshals
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode returns nil for any value that is not a cursor previously produced by
// Encode, which restarts pagination from the top.
func Decode(raw string) *Cursor {
	raw = strings.TrimRight(strings.TrimSpace(raw), "=")
	if raw == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var decoded rawCursor
	err = json.Unmarshal(data, &decoded)
	if err != nil {
		return nil
	}
	if decoded.CreatedAt == nil || decoded.TiebreakID == nil {
		return nil
	}
	if *decoded.CreatedAt == "" || *decoded.TiebreakID == "" {
		return nil
	}
	return &Cursor{
		CreatedAt:  *decoded.CreatedAt,
		TiebreakID: *decoded.TiebreakID,
	}
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// NormalizeTimestamp reformats value as a UTC RFC 3339 instant unless it
// already is one. Values that cannot be parsed are returned unchanged.
func NormalizeTimestamp(value string) string {
	if _, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return value
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC().Format(time.RFC3339Nano)
		}
	}
	return value
}

// Time parses the cursor's timestamp after normalization. ok is false when the
// timestamp is not a recognizable instant.
func (cursor Cursor) Time() (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339Nano, NormalizeTimestamp(cursor.CreatedAt))
	return t, err == nil
}
