package storage

import (
	"encoding/json"
	"fmt"
)

// FormatError indicates a persisted blob could not be decoded: the JSON is
// malformed or the schema version is not one this binary understands.
// It is fatal for the operation that hit it; silent data loss is worse
// than a visible failure.
type FormatError struct {
	Key    string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("storage format error for %q: %s", e.Key, e.Reason)
}

// document is the envelope every structured blob is wrapped in so that
// format drift is a decodable, testable condition.
type document struct {
	SchemaVersion int             `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
}

// EncodeBlob wraps v in a versioned envelope and returns the JSON blob.
func EncodeBlob(version int, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal blob payload: %w", err)
	}
	doc := document{
		SchemaVersion: version,
		Data:          data,
	}
	blob, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal blob envelope: %w", err)
	}
	return string(blob), nil
}

// DecodeBlob unwraps a versioned envelope into v. A parse failure or a
// schema version other than the expected one yields a *FormatError.
func DecodeBlob(key, blob string, version int, v interface{}) error {
	var doc document
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		return &FormatError{Key: key, Reason: "unparsable envelope: " + err.Error()}
	}
	if doc.SchemaVersion != version {
		return &FormatError{
			Key:    key,
			Reason: fmt.Sprintf("schema version %d, expected %d", doc.SchemaVersion, version),
		}
	}
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return &FormatError{Key: key, Reason: "unparsable payload: " + err.Error()}
	}
	return nil
}
