package aijson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWellFormed(t *testing.T) {
	value, err := Parse(`{"answer": "x", "n": 2, "tags": ["a"]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"answer": "x",
		"n":      float64(2),
		"tags":   []any{"a"},
	}, value)
}

func TestParsePrettyPrinted(t *testing.T) {
	value, err := Parse("{\n  \"a\": 1\r\n}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, value)
}

func TestParseLiteralNewlineInsideString(t *testing.T) {
	value, err := Parse("{\"a\": \"line1\nline2\"}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "line1\nline2"}, value)
}

func TestParseDropsCarriageReturns(t *testing.T) {
	value, err := Parse("{\"mermaid_diagram\": \"graph TD\r\n    A-->B\"}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"mermaid_diagram": "graph TD\n    A-->B"}, value)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "prose", raw: "Sure! Here is your diagram."},
		{name: "truncated", raw: `{"a": "b`},
		{name: "trailing garbage", raw: `{"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Parse(tt.raw)
			assert.Nil(t, value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload))

			var malformed *MalformedPayloadError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.raw, malformed.Raw)
			assert.Contains(t, err.Error(), "failed to parse AI output")
		})
	}
}

func TestParseObjectRejectsNonObjects(t *testing.T) {
	_, err := ParseObject(`["a", "b"]`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	object, err := ParseObject(`{"mermaid_diagram": "A-->B"}`)
	require.NoError(t, err)
	assert.Equal(t, "A-->B", object["mermaid_diagram"])
}

func TestEscapeBareQuotes(t *testing.T) {
	assert.Equal(t, `\"a\" and \"b\"`, escapeBareQuotes(`"a" and \"b"`))
	assert.Equal(t, "", escapeBareQuotes(""))
}
