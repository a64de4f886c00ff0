package models

import "fmt"

// MalformedRecordError reports an entity missing a required identity field.
// RecordID is nil when the record carries no id at all.
type MalformedRecordError struct {
	Kind     string
	RecordID *string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	id := "<nil>"
	if e.RecordID != nil {
		id = *e.RecordID
	}
	return fmt.Sprintf("malformed %s record (id=%s): %s", e.Kind, id, e.Reason)
}
