package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeSingleJSON asserts the output is exactly one JSON document.
func decodeSingleJSON(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	dec := json.NewDecoder(out)
	var doc map[string]any
	require.NoError(t, dec.Decode(&doc))
	assert.False(t, dec.More(), "stdout must carry exactly one JSON document")
	return doc
}

func TestRunUnreadableFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	var out bytes.Buffer
	code := run(filepath.Join(t.TempDir(), "no-such-image.jpg"), &out)

	assert.Equal(t, 1, code)
	doc := decodeSingleJSON(t, &out)
	assert.Equal(t, "An error occurred during prediction.", doc["error"])
	assert.NotEmpty(t, doc["details"])
}

func TestRunWithoutModelReportsError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	t.Setenv("MODEL_PATH", filepath.Join(dir, "no-such-model.onnx"))

	imgPath := filepath.Join(dir, "sample.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0o644))

	var out bytes.Buffer
	code := run(imgPath, &out)

	assert.Equal(t, 1, code)
	doc := decodeSingleJSON(t, &out)
	assert.Equal(t, "An error occurred during prediction.", doc["error"])
	assert.NotEmpty(t, doc["details"])
}

func TestMissingArgumentShape(t *testing.T) {
	var out bytes.Buffer
	printJSON(&out, errorOutput{Error: "No image path provided."})
	assert.Equal(t, "{\"error\":\"No image path provided.\"}\n", out.String())
}
