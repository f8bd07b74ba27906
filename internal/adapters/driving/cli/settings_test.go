package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func currentSettings(t *testing.T) *domain.AppSettings {
	t.Helper()
	settings, err := settingsService.Get()
	require.NoError(t, err)
	return settings
}

func TestSettingsCmd_Subcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range settingsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"show", "embedding", "llm", "research", "retrieval", "sections"}, names)
}

func TestSettingsShow_Defaults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "[Embedding]")
	assert.Contains(t, stdout, "[Research]")
	assert.Contains(t, stdout, "Model: sonar-pro")
	assert.Contains(t, stdout, "API Key: (not set)")
	assert.Contains(t, stdout, "Chunk size: 500")
	assert.Contains(t, stdout, "Sections: Introduction")
	assert.Contains(t, stdout, "Warning:")
}

func TestSettingsShow_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	SetServices(&Services{})

	_, _, err := executeCommand("settings")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestSettingsEmbedding_OpenAI(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\n\nsk-test-1234567890\n"))

	stdout, _, err := executeCommand("settings", "embedding")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Validating configuration... OK")
	settings := currentSettings(t)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "sk-test-1234567890", settings.Embedding.APIKey)

	stdout, _, err = executeCommand("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API Key: sk-t...7890")
	assert.NotContains(t, stdout, "sk-test-1234567890")
}

func TestSettingsEmbedding_MissingAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\n\n\n"))

	_, _, err := executeCommand("settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsEmbedding_ValidationFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testValidator.err = errTest
	rootCmd.SetIn(strings.NewReader("1\n\n"))

	stdout, _, err := executeCommand("settings", "embedding")

	require.Error(t, err)
	assert.ErrorIs(t, err, errTest)
	assert.Contains(t, stdout, "FAILED: boom")
}

func TestSettingsLLM_OllamaWithCustomModel(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("1\nmistral\n"))

	stdout, _, err := executeCommand("settings", "llm")

	require.NoError(t, err)
	assert.Contains(t, stdout, "LLM provider configured")
	settings := currentSettings(t)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.NotEmpty(t, settings.LLM.BaseURL)
}

func TestSettingsResearch(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("\npplx-abcdefgh1234\n"))

	stdout, _, err := executeCommand("settings", "research")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Research provider configured")
	settings := currentSettings(t)
	assert.Equal(t, domain.DefaultResearchModel, settings.Research.Model)
	assert.Equal(t, "pplx-abcdefgh1234", settings.Research.APIKey)
	assert.True(t, settings.Research.IsConfigured())
}

func TestSettingsResearch_MissingAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("\n\n"))

	_, _, err := executeCommand("settings", "research")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsRetrieval_OnlyChangedFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("settings", "retrieval", "--top-k", "9")

	require.NoError(t, err)
	assert.Contains(t, stdout, "top-k 9")
	settings := currentSettings(t)
	assert.Equal(t, 9, settings.Retrieval.TopK)
	assert.Equal(t, domain.DefaultChunkSize, settings.Retrieval.ChunkSize)
	assert.InDelta(t, domain.DefaultThreshold, settings.Retrieval.Threshold, 1e-9)
}

func TestSettingsRetrieval_InvalidThreshold(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("settings", "retrieval", "--threshold", "1.5")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSections(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("settings", "sections", "Abstract", "Related Work", "Conclusion")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Sections: Abstract, Related Work, Conclusion")
	assert.Equal(t, []string{"Abstract", "Related Work", "Conclusion"}, currentSettings(t).Article.Sections)

	_, _, err = executeCommand("settings", "sections", "--reset")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSections(), currentSettings(t).Article.Sections)
}

func TestSettingsSections_RequiresNames(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("settings", "sections")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one section")
}
