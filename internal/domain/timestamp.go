package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the zone-less UTC form used in persisted documents.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// Timestamp is a UTC instant persisted without a zone suffix.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t converted to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(TimestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", raw)
}

// Date returns the calendar day in YYYY-MM-DD form.
func (t Timestamp) Date() string {
	return t.UTC().Format("2006-01-02")
}
