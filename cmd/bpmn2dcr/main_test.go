package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func copyTestCase(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "bpmn", "test-cases", name))
	require.NoError(t, err)
	target := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(target, data, 0o600))
	return target
}

func TestWritesDcrXmlNextToInput(t *testing.T) {
	// given
	input := copyTestCase(t, "exclusive-gateway.bpmn")
	var stdout, stderr bytes.Buffer

	// when
	code := run(context.Background(), []string{input}, &stdout, &stderr)

	// then
	require.Equal(t, 0, code, stderr.String())
	data, err := os.ReadFile(filepath.Join(filepath.Dir(input), "exclusive-gateway.dcr.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<dcrgraph")
	assert.Contains(t, stderr.String(), "BPMN model is valid")
	assert.Empty(t, stdout.String())
}

func TestJsonToStdout(t *testing.T) {
	// given
	input := copyTestCase(t, "exclusive-gateway.bpmn")
	var stdout, stderr bytes.Buffer

	// when
	code := run(context.Background(), []string{"--threshold", "3", "-f", "json", "-o", "-", input}, &stdout, &stderr)

	// then
	require.Equal(t, 0, code, stderr.String())
	var doc document
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Equal(t, "exclusive-gateway", doc.ProcessId)
	assert.Equal(t, 3, doc.Threshold)
	assert.Empty(t, doc.NestingIds)
	assert.Len(t, doc.Graph.Relations, 12)
}

func TestYamlAndDotOutputs(t *testing.T) {
	input := copyTestCase(t, "unsupported-elements.bpmn")

	var yamlOut, stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{"-f", "yaml", "-o", "-", input}, &yamlOut, &stderr))
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &doc))
	assert.Equal(t, "unsupported-elements", doc["processId"])
	assert.NotEmpty(t, doc["diagnostics"])
	assert.Contains(t, stderr.String(), "WARNING")

	require.Equal(t, 0, run(context.Background(), []string{"--format=dot", input}, &bytes.Buffer{}, &bytes.Buffer{}))
	dot, err := os.ReadFile(filepath.Join(filepath.Dir(input), "unsupported-elements.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph")
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{name: "no input", args: []string{}, code: 2, stderr: "expected exactly one input file"},
		{name: "unknown format", args: []string{"-f", "svg", "a.bpmn"}, code: 2, stderr: `unsupported format "svg"`},
		{name: "negative threshold", args: []string{"-t", "-1", "a.bpmn"}, code: 2, stderr: "threshold must not be negative"},
		{name: "missing file", args: []string{filepath.Join(t.TempDir(), "missing.bpmn")}, code: 1, stderr: "failed to load from file"},
		{name: "fatal translation", args: []string{copyTestCase(t, "no-start-event.bpmn")}, code: 1, stderr: "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer

			code := run(context.Background(), tt.args, &bytes.Buffer{}, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr.String(), tt.stderr)
		})
	}
}
