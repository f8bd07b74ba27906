package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill/internal/core/domain"
)

func TestSectionCmd_Use(t *testing.T) {
	assert.Equal(t, "section [topic] [section]", sectionCmd.Use)
}

func TestSectionCmd_RequiresTwoArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("section", "Coral reefs", "-f", "a.md")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSectionCmd_RequiresFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("section", "Coral reefs", "Introduction")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "file" not set`)
}

func TestSectionCmd_WritesSection(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("section", "Coral reefs", "Methods", "-f", "notes.md")

	require.NoError(t, err)
	assert.Equal(t, []string{"Methods"}, testWriter.sections)
	assert.Equal(t, []string{"notes.md"}, testFiles.paths)
	require.Len(t, testWriter.pages, 1)
	assert.Contains(t, stdout, "## Methods\nSection text [1].")
	assert.Contains(t, stdout, "References:\n1. notes")
	assert.Equal(t, 1, testReleases)
}

func TestSectionCmd_WriteFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testWriter.err = domain.ErrEmbeddingUnavailable

	_, _, err := executeCommand("section", "Coral reefs", "Methods", "-f", "notes.md")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
