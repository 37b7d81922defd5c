package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultPlainJSON(t *testing.T) {
	res := ParseResult(`{"questions": [{"question": "What is Go?"}]}`)
	assert.True(t, res.Parsed)
	assert.JSONEq(t, `{"questions": [{"question": "What is Go?"}]}`, string(res.Data))
}

func TestParseResultStripsCodeFences(t *testing.T) {
	for _, raw := range []string{
		"```json\n{\"a\": 1}\n```",
		"```\n{\"a\": 1}\n```",
		"  ```json\n{\"a\": 1}\n```  ",
	} {
		res := ParseResult(raw)
		require.True(t, res.Parsed, "input: %q", raw)
		assert.JSONEq(t, `{"a": 1}`, string(res.Data))
	}
}

func TestParseResultInvalidJSON(t *testing.T) {
	raw := "Sure! Here are your questions: 1. What is Go?"
	res := ParseResult(raw)
	assert.False(t, res.Parsed)
	assert.Equal(t, raw, res.Raw)
	assert.NotEmpty(t, res.Reason)
}

func TestDecodeParsedResult(t *testing.T) {
	res := ParseResult(`{"name": "intro", "pages": 3}`)

	var out struct {
		Name  string `json:"name"`
		Pages int    `json:"pages"`
	}
	ok, err := res.Decode(&out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "intro", out.Name)
	assert.Equal(t, 3, out.Pages)
}

func TestDecodeUnparsedResultLeavesTargetUntouched(t *testing.T) {
	res := ParseResult("not json")

	out := map[string]interface{}{"keep": true}
	ok, err := res.Decode(&out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, map[string]interface{}{"keep": true}, out)
}

func TestDecodeShapeMismatch(t *testing.T) {
	res := ParseResult(`{"pages": "three"}`)

	var out struct {
		Pages int `json:"pages"`
	}
	ok, err := res.Decode(&out)
	require.Error(t, err)
	assert.False(t, ok)
}
