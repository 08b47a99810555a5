// Package aijson decodes JSON produced by language models, which often
// carries raw control characters and stray quotes inside string values.
package aijson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed ai payload")

// MalformedPayloadError is returned once both the strict and the repaired
// decode attempts have failed.
type MalformedPayloadError struct {
	Raw   string
	First error
	Err   error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("failed to parse AI output: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

// Parse decodes raw into a generic JSON value in up to three attempts:
//  1. raw as is, so valid JSON (pretty-printed included) is never rewritten
//  2. literal newlines escaped and carriage returns dropped
//  3. the same text with bare quotes escaped
//
// Valid JSON never reaches the repair attempts.
func Parse(raw string) (any, error) {
	if value, err := decode(raw); err == nil {
		return value, nil
	}

	cleaned := strings.ReplaceAll(raw, "\n", `\n`)
	cleaned = strings.ReplaceAll(cleaned, "\r", "")

	value, firstErr := decode(cleaned)
	if firstErr == nil {
		return value, nil
	}

	value, err := decode(escapeBareQuotes(cleaned))
	if err != nil {
		return nil, &MalformedPayloadError{Raw: raw, First: firstErr, Err: err}
	}
	return value, nil
}

// ParseObject is Parse restricted to a top-level JSON object.
func ParseObject(raw string) (map[string]any, error) {
	value, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, &MalformedPayloadError{
			Raw: raw,
			Err: fmt.Errorf("expected a JSON object, got %T", value),
		}
	}
	return object, nil
}

func decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return value, nil
}

// escapeBareQuotes prefixes every double quote that is not already preceded
// by a backslash with one.
func escapeBareQuotes(text string) string {
	var buf bytes.Buffer
	buf.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		if text[i] == '"' && (i == 0 || text[i-1] != '\\') {
			buf.WriteByte('\\')
		}
		buf.WriteByte(text[i])
	}
	return buf.String()
}
