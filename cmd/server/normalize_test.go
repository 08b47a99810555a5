package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runNormalize(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"normalize"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizeFromStdin(t *testing.T) {
	out, err := runNormalize(t, "A[Hello<br>World] --> B")
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n    A[\"Hello World\"] --> B\n", out)
}

func TestNormalizeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.mmd")
	require.NoError(t, os.WriteFile(path, []byte("flowchart LR\n  X{Decision}"), 0o644))

	out, err := runNormalize(t, "", path)
	require.NoError(t, err)
	assert.Equal(t, "flowchart LR\n  X(Decision)\n", out)
}

func TestNormalizeJSONReply(t *testing.T) {
	out, err := runNormalize(t, "{\"answer\":\"a\",\"mermaid_diagram\":\"graph TD\n A[x]\"}", "--json")
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n A[\"x\"]\n", out)

	out, err = runNormalize(t, `{"answer":"a"}`, "--json")
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n    A[Diagram Not Available]\n", out)

	_, err = runNormalize(t, "not json", "--json")
	assert.ErrorContains(t, err, "failed to parse AI output")
}

func TestNormalizeBlankInput(t *testing.T) {
	out, err := runNormalize(t, "   ")
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n    A[No diagram available]\n", out)
}
