package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyrnios-backend/internal/pkg/aijson"
)

func TestDemoFileFor(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{prompt: "write a poem", want: "gc2.json"},
		{prompt: "how does garbage collection work", want: "gc.json"},
		{prompt: "equations of motion", want: "eqn_motion.json"},
		{prompt: "the mughal empire", want: "mughal.json"},
		{prompt: "linear regression", want: "regression.json"},
		{prompt: "maximum likelihood", want: "regression2.json"},
		{prompt: "write about garbage", want: "gc2.json"},
		{prompt: "Garbage", want: "error.json"},
		{prompt: "", want: "error.json"},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, DemoFileFor(tt.prompt))
		})
	}
}

func TestDemoLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gc.json"),
		[]byte(`{"answer":"gc","mermaid_diagram":"A[Mark] --> B[Sweep]"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "error.json"),
		[]byte(`{"answer":"no demo"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mughal.json"),
		[]byte(`{"answer": oops}`), 0o644))

	svc := NewDemoService(dir, nil, nil)

	result, err := svc.Load("garbage collector")
	require.NoError(t, err)
	assert.Equal(t, "gc", result["answer"])
	assert.Equal(t, "graph TD\n    A[\"Mark\"] --> B[\"Sweep\"]", result[DiagramField])

	result, err = svc.Load("something else")
	require.NoError(t, err)
	_, hasDiagram := result[DiagramField]
	assert.False(t, hasDiagram)

	_, err = svc.Load("write")
	assert.ErrorIs(t, err, ErrDemoNotFound)

	_, err = svc.Load("mughal")
	assert.ErrorIs(t, err, aijson.ErrMalformedPayload)
}
