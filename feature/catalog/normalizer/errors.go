package normalizer

import "fmt"

// MalformedRecordError reports a raw record that cannot be turned into a
// canonical product because a required field is absent or of the wrong shape.
type MalformedRecordError struct {
	// Field is the offending raw field.
	Field string
	// Reason describes what was wrong with it.
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: field %q %s", e.Field, e.Reason)
}

func malformed(field, reason string) *MalformedRecordError {
	return &MalformedRecordError{Field: field, Reason: reason}
}
