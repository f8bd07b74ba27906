package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, v bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(v)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		log     func(string, ...any)
		verbose bool
		want    string
	}{
		{"debug verbose", Debug, true, "[DEBUG] chunk 3 arg\n"},
		{"debug quiet", Debug, false, ""},
		{"info verbose", Info, true, "[INFO] chunk 3 arg\n"},
		{"info quiet", Info, false, ""},
		{"warn verbose", Warn, true, "[WARN] chunk 3 arg\n"},
		{"warn quiet", Warn, false, ""},
		{"error verbose", Error, true, "[ERROR] chunk 3 arg\n"},
		{"error quiet", Error, false, "[ERROR] chunk 3 arg\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log("chunk %d %s", 3, "arg")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Retrieval")
	assert.Equal(t, "\n=== Retrieval ===\n", buf.String())
}

func TestSection_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)
	Section("Retrieval")
	assert.Empty(t, buf.String())
}
