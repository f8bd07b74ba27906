package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/quill/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, source discovery, retrieval and article layout.

Use subcommands to configure specific settings. API keys found in the
environment (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, PPLX_API_KEY)
take precedence over stored keys.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index source chunks.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes article sections.`,
	RunE:  runSettingsLLM,
}

var settingsResearchCmd = &cobra.Command{
	Use:   "research",
	Short: "Configure source discovery",
	Long:  `Configure the Perplexity model and API key used to find sources for a topic.`,
	RunE:  runSettingsResearch,
}

var settingsRetrievalCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Set chunking and retrieval parameters",
	Long: `Set chunk size, the number of chunks used per section, and the minimum
similarity a chunk needs to be used. Only the flags given are changed.

Example:
  quill settings retrieval --chunk-size 800 --top-k 8 --threshold 0.4`,
	Args: cobra.NoArgs,
	RunE: runSettingsRetrieval,
}

var settingsSectionsCmd = &cobra.Command{
	Use:   "sections [name...]",
	Short: "Set the article sections",
	Long: `Replace the ordered list of sections written for each article.

Example:
  quill settings sections Abstract Introduction "Related Work" Conclusion
  quill settings sections --reset`,
	RunE: runSettingsSections,
}

var (
	retrievalChunkSize int
	retrievalTopK      int
	retrievalThreshold float64
	sectionsReset      bool
)

func init() {
	settingsRetrievalCmd.Flags().IntVar(&retrievalChunkSize, "chunk-size", domain.DefaultChunkSize,
		"target chunk length in characters")
	settingsRetrievalCmd.Flags().IntVar(&retrievalTopK, "top-k", domain.DefaultTopK, "chunks retrieved per section")
	settingsRetrievalCmd.Flags().Float64Var(&retrievalThreshold, "threshold", domain.DefaultThreshold,
		"minimum similarity (exclusive)")
	settingsSectionsCmd.Flags().BoolVar(&sectionsReset, "reset", false, "restore the default sections")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsResearchCmd)
	settingsCmd.AddCommand(settingsRetrievalCmd)
	settingsCmd.AddCommand(settingsSectionsCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	cmd.Println("[Research]")
	cmd.Printf("  Provider: %s\n", settings.Research.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Research.Model)
	cmd.Printf("  API Key: %s\n", displayKey(settings.Research.APIKey))
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Research.IsConfigured()))
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Chunk size: %d\n", settings.Retrieval.ChunkSize)
	cmd.Printf("  Top-k: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Threshold: %.2f\n", settings.Retrieval.Threshold)
	cmd.Println()

	cmd.Println("[Fetch]")
	cmd.Printf("  Max retries: %d\n", settings.Fetch.MaxRetries)
	cmd.Printf("  Retry delay: %s\n", settings.Fetch.RetryDelay)
	cmd.Printf("  Rate: %.1f req/s\n", settings.Fetch.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Article]")
	cmd.Printf("  Sections: %s\n", strings.Join(settings.Article.Sections, ", "))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(apiKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(configured))
	cmd.Println()
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		kind:      "Embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		kind:      "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	})
}

// providerPrompt describes one interactive provider setup flow.
type providerPrompt struct {
	kind      string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(provider domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Printf("Select %s Provider\n", p.kind)
	for i, provider := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(p.providers), 1)
	selected := p.providers[idx-1]

	defaultModel := p.defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := p.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", p.kind, err)
	}

	// Ping the provider with the saved settings.
	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", p.kind, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", p.kind, selected.Description(), model)
	return nil
}

func runSettingsResearch(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	provider := domain.ResearchProviderPerplexity

	cmd.Printf("Source discovery uses %s.\n", provider.Description())
	cmd.Printf("Enter model name [%s]: ", domain.DefaultResearchModel)
	model := readLine(reader)
	if model == "" {
		model = domain.DefaultResearchModel
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword(cmd, reader)
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for source discovery")
	}

	if err := settingsService.SetResearchProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure research provider: %w", err)
	}

	cmd.Printf("Research provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsRetrieval(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	retrieval := settings.Retrieval
	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		retrieval.ChunkSize = retrievalChunkSize
	}
	if flags.Changed("top-k") {
		retrieval.TopK = retrievalTopK
	}
	if flags.Changed("threshold") {
		retrieval.Threshold = retrievalThreshold
	}

	if err := settingsService.SetRetrieval(retrieval); err != nil {
		return fmt.Errorf("failed to set retrieval: %w", err)
	}

	cmd.Printf("Retrieval: chunk size %d, top-k %d, threshold %.2f\n",
		retrieval.ChunkSize, retrieval.TopK, retrieval.Threshold)
	return nil
}

func runSettingsSections(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	sections := args
	if sectionsReset {
		sections = domain.DefaultSections()
	}
	if len(sections) == 0 {
		return errors.New("give at least one section name, or --reset")
	}

	if err := settingsService.SetSections(sections); err != nil {
		return fmt.Errorf("failed to set sections: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Printf("Sections: %s\n", strings.Join(settings.Article.Sections, ", "))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when stdin is a terminal,
// falling back to a plain line read.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if in, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		password, err := term.ReadPassword(int(in.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
